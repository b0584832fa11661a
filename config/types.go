package config

type config struct {
	Server     server     `yaml:"server" mapstructure:"server"`
	Storage    storage    `yaml:"storage" mapstructure:"storage"`
	Mongo      mongo      `yaml:"mongo" mapstructure:"mongo"`
	Mysql      mysql      `yaml:"mysql" mapstructure:"mysql"`
	Redis      redis      `yaml:"redis" mapstructure:"redis"`
	RabbitMq   rabbitmq   `yaml:"rabbitmq" mapstructure:"rabbitmq"`
	Jwt        jwt        `yaml:"jwt" mapstructure:"jwt"`
	Jaeger     jaeger     `yaml:"jaeger" mapstructure:"jaeger"`
	Sentinel   sentinel   `yaml:"sentinel" mapstructure:"sentinel"`
	Pagination pagination `yaml:"pagination" mapstructure:"pagination"`
	RateLimit  rateLimit  `yaml:"rate_limit" mapstructure:"rate_limit"`
}

type server struct {
	Addr               string   `yaml:"addr"`
	MaxRequestBodySize int      `yaml:"max_request_body_size" mapstructure:"max_request_body_size"`
	AllowOrigins       []string `yaml:"allow_origins" mapstructure:"allow_origins"`
}

// storage.driver selects the comment gateway: mongo, mysql or memory.
type storage struct {
	Driver  string `yaml:"driver"`
	Timeout string `yaml:"timeout"`
}

type mongo struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type mysql struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Charset  string `yaml:"charset"`
}

type redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PageTTL  string `yaml:"page_ttl" mapstructure:"page_ttl"`
	Enabled  bool   `yaml:"enabled"`
}

type rabbitmq struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Enabled  bool   `yaml:"enabled"`
}

type jwt struct {
	Secret  string `yaml:"secret"`
	Realm   string `yaml:"realm"`
	Timeout string `yaml:"timeout"`
}

type jaeger struct {
	Enabled   bool   `yaml:"enabled"`
	AgentAddr string `yaml:"agent_addr" mapstructure:"agent_addr"`
}

type sentinel struct {
	CreateQPS float64 `yaml:"create_qps" mapstructure:"create_qps"`
}

type pagination struct {
	DefaultLimit int `yaml:"default_limit" mapstructure:"default_limit"`
	MaxLimit     int `yaml:"max_limit" mapstructure:"max_limit"`
}

// rate_limit bounds how many comments one user may post per window. It needs
// redis; max_comments <= 0 turns it off.
type rateLimit struct {
	Window      string `yaml:"window"`
	MaxComments int64  `yaml:"max_comments" mapstructure:"max_comments"`
}
