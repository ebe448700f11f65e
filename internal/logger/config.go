package logger

type Config struct {
	LogFile     string
	MaxSize     int // megabytes
	MaxAge      int // days
	MaxBackups  int
	Compress    bool
	Development bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		LogFile:    "monitor.log",
		MaxSize:    50,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
	}
}
