package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	Port                 string
	APIAccessKey         string
	SourcesFile          string
	KeywordsFile         string
	WorkerCount          int
	SchedulerInterval    int
	IngestInterval       int
	RetentionWindowHours int
	HTTPTimeout          int
	ImageWorkers         int
	ExtractContent       bool

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
