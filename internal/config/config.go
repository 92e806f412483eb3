package config

import (
	"fmt"
	"runtime"
)

// Columns names the roster headers the tool reads. The defaults match a
// full-column CSV export from the clinic's records system.
type Columns struct {
	PostalCode string
	Name       string
	LastVisit  string
	BirthDate  string
	Address    string
	PatientID  string
}

// Config is everything the recall run needs.
type Config struct {
	Columns Columns

	// Patients younger than this are pediatric.
	PediatricThreshold            int
	RecallIntervalMonths          int
	PediatricRecallIntervalMonths int
	NameHonorific                 string

	NGListPath    string
	OutputDir     string
	OutputFormat  string // csv | xlsx
	InputEncoding string // shift_jis | utf-8

	GazetteerSource string // file | db
	GazetteerPath   string
	DatabaseURL     string

	Workers int
	Debug   bool

	HTTPHost string
	HTTPPort int
}

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	EncodingShiftJIS = "shift_jis"
	EncodingUTF8     = "utf-8"

	SourceFile = "file"
	SourceDB   = "db"
)

// Load reads .env and the environment on top of the defaults.
func Load() (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg := &Config{
		Columns: Columns{
			PostalCode: GetEnv("POSTAL_CODE_COLUMN", "郵便番号"),
			Name:       GetEnv("NAME_COLUMN", "患者漢字氏名"),
			LastVisit:  GetEnv("LAST_VISIT_COLUMN", "保険最終来院日"),
			BirthDate:  GetEnv("BIRTHDAY_COLUMN", "生年月日"),
			Address:    GetEnv("ADDRESS_COLUMN", "住所"),
			PatientID:  GetEnv("PATIENT_ID_COLUMN", "カルテ番号"),
		},
		PediatricThreshold:            GetEnvInt("PED_THRESHOLD", 12),
		RecallIntervalMonths:          GetEnvInt("RECALL_INTERVAL_MONTHS", 6),
		PediatricRecallIntervalMonths: GetEnvInt("PED_RECALL_INTERVAL_MONTHS", 3),
		NameHonorific:                 GetEnv("NAME_HONORIFIC", "様"),
		NGListPath:                    GetEnv("NG_LIST_PATH", "nglist.csv"),
		OutputDir:                     GetEnv("OUTPUT_DIR", "result"),
		OutputFormat:                  GetEnv("OUTPUT_FORMAT", FormatCSV),
		InputEncoding:                 GetEnv("INPUT_ENCODING", EncodingShiftJIS),
		GazetteerSource:               GetEnv("GAZETTEER_SOURCE", SourceFile),
		GazetteerPath:                 GetEnv("GAZETTEER_PATH", "KEN_ALL.CSV"),
		DatabaseURL:                   GetEnv("DATABASE_URL", ""),
		Workers:                       GetEnvInt("WORKERS", runtime.NumCPU()),
		Debug:                         GetEnvBool("DEBUG", false),
		HTTPHost:                      GetEnv("WEB_HOST", "localhost"),
		HTTPPort:                      GetEnvInt("WEB_PORT", 8080),
	}

	return cfg, nil
}

// Validate checks the values a run depends on.
func (c *Config) Validate() error {
	if c.RecallIntervalMonths < 0 || c.PediatricRecallIntervalMonths < 0 {
		return fmt.Errorf("%w: recall intervals must not be negative", ErrInvalid)
	}
	if c.PediatricThreshold < 0 {
		return fmt.Errorf("%w: pediatric threshold must not be negative", ErrInvalid)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalid, c.Workers)
	}
	switch c.OutputFormat {
	case FormatCSV, FormatXLSX:
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalid, c.OutputFormat)
	}
	switch c.InputEncoding {
	case EncodingShiftJIS, EncodingUTF8:
	default:
		return fmt.Errorf("%w: unknown input encoding %q", ErrInvalid, c.InputEncoding)
	}
	switch c.GazetteerSource {
	case SourceFile, SourceDB:
	default:
		return fmt.Errorf("%w: unknown gazetteer source %q", ErrInvalid, c.GazetteerSource)
	}
	return nil
}
