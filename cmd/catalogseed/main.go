// Command catalogseed loads movies from a JSON file into a running movie
// service.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
)

type seedMovie struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	ReleaseYear int     `json:"releaseYear"`
	Creator     string  `json:"creator"`
}

func main() {
	var fileName, serviceURL string
	flag.StringVar(&fileName, "file", "moviesdata.json", "File with movies to load")
	flag.StringVar(&serviceURL, "service", "http://localhost:8081", "Movie service base URL")
	flag.Parse()

	fmt.Println("Reading movies from file " + fileName)
	movies, err := readMovies(fileName)
	if err != nil {
		log.Fatalf("cannot read movies: %v", err)
	}

	for _, m := range movies {
		if err := createMovie(serviceURL, m); err != nil {
			log.Fatalf("cannot create movie %q: %v", m.Title, err)
		}
	}
	fmt.Printf("all %d movies created\n", len(movies))
}

func readMovies(fileName string) ([]seedMovie, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var movies []seedMovie
	if err := json.NewDecoder(f).Decode(&movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func createMovie(serviceURL string, m seedMovie) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	resp, err := http.Post(serviceURL+"/movies", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return nil
}
