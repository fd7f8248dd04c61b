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
	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`
	Token struct {
		Secret     string `yaml:"secret"`
		TTLMinutes int    `yaml:"ttlMinutes"`
	} `yaml:"token"`
}
