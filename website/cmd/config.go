package main

type config struct {
	API struct {
		Port int `yaml:"port"`
	} `yaml:"api"`
	ServiceDiscovery struct {
		Consul struct {
			Address string `yaml:"address"`
		} `yaml:"consul"`
	} `yaml:"serviceDiscovery"`
	Jaeger struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"jaeger"`
	RateLimit struct {
		RequestsPerSecond int `yaml:"requestsPerSecond"`
		Burst             int `yaml:"burst"`
	} `yaml:"rateLimit"`
}
