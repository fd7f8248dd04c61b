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
	Search struct {
		Host   string `yaml:"host"`
		APIKey string `yaml:"apiKey"`
		Index  string `yaml:"index"`
	} `yaml:"search"`
	Reconciler struct {
		IntervalSeconds int   `yaml:"intervalSeconds"`
		BatchSize       int64 `yaml:"batchSize"`
		Workers         int   `yaml:"workers"`
	} `yaml:"reconciler"`
}
