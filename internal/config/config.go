package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const configFileName = "config.toml"

// AppConfig application configuration
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Pipeline PipelineConfig `toml:"pipeline"`
	CSV      CSVConfig      `toml:"csv"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig working directory layout
type DataConfig struct {
	DataDir      string `toml:"data_dir"`
	InboxDir     string `toml:"inbox_dir"`
	ProcessedDir string `toml:"processed_dir"`
	BackupDir    string `toml:"backup_dir"`
	UploadDir    string `toml:"upload_dir"`
	OutputName   string `toml:"output_name"`
	HistoryDB    string `toml:"history_db"`
	AutoBackup   bool   `toml:"auto_backup"`
}

// PipelineConfig column resolution and output shaping.
// Candidate lists are tried in order; the first header present wins.
type PipelineConfig struct {
	PayloadColumns     []string `toml:"payload_columns"`
	EligibilityColumns []string `toml:"eligibility_columns"`
	DedupeKey          string   `toml:"dedupe_key"`
	PriorityColumns    []string `toml:"priority_columns"`
}

// CSVConfig delimited-text settings. Delimiter "auto" sniffs ',' or ';'
// from the header line.
type CSVConfig struct {
	Delimiter string `toml:"delimiter"`
}

// LogConfig logger settings
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LoadConfigInfo metadata about how the config was loaded
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:      ".",
			InboxDir:     "leiame",
			ProcessedDir: "lidos",
			BackupDir:    "backup",
			UploadDir:    "uploads",
			OutputName:   "relatorio_propostas_formatado.xlsx",
			HistoryDB:    "propostas.db",
			AutoBackup:   true,
		},
		Pipeline: DefaultPipelineConfig(),
		CSV: CSVConfig{
			Delimiter: "auto",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPipelineConfig default header candidates and column priority
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		PayloadColumns:     []string{"Margens Prev", "MargensPrev", "Margens_Prev"},
		EligibilityColumns: []string{"Motivo Inelegibilidade", "MotivoInelegibilidade", "Motivo"},
		DedupeKey:          "Nome",
		PriorityColumns: []string{
			"Nome",
			"CPF",
			"CBO",
			"CNAE",
			"Empregador",
			"MotivoInelegibilidade_Codigo",
			"MotivoInelegibilidade_Descricao",
			"ValorMargemDisponivel",
			"ValorBaseMargem",
			"Parceiro",
			"Data de abertura da proposta",
			"Número da Proposta",
			"Status da Proposta",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir returns the directory holding the executable
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func baseDir() string {
	exeDir, err := GetExeDir()
	if err != nil {
		return "."
	}
	return exeDir
}

// LoadConfigWithInfo loads config.toml from the executable directory
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadConfigFrom(filepath.Join(baseDir(), configFileName))
}

// LoadConfigFrom loads the given TOML file. A missing file yields defaults.
// A .env beside the file (or in the working directory) is loaded first;
// environment variables override file values.
func LoadConfigFrom(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	loadDotEnv(filepath.Dir(configPath))

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	case os.IsNotExist(err):
		// defaults
	default:
		return nil, info, err
	}

	applyEnv(config, &info)
	fillEmptyPipeline(&config.Pipeline)

	return config, info, nil
}

func loadDotEnv(dir string) {
	// godotenv.Load never overrides variables already set.
	for _, p := range []string{filepath.Join(dir, ".env"), ".env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func applyEnv(config *AppConfig, info *LoadConfigInfo) {
	if v := os.Getenv("PROPOSTAS_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("PROPOSTAS_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("PROPOSTAS_LOG_FORMAT"); v != "" {
		config.Log.Format = v
	}
	if v := os.Getenv("PROPOSTAS_CSV_DELIMITER"); v != "" {
		config.CSV.Delimiter = v
	}
	if v := os.Getenv("PROPOSTAS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			config.Server.Port = port
			info.PortSpecified = true
		}
	}
}

// fillEmptyPipeline restores defaults for lists a partial TOML file left empty.
func fillEmptyPipeline(p *PipelineConfig) {
	def := DefaultPipelineConfig()
	if len(p.PayloadColumns) == 0 {
		p.PayloadColumns = def.PayloadColumns
	}
	if len(p.EligibilityColumns) == 0 {
		p.EligibilityColumns = def.EligibilityColumns
	}
	if p.DedupeKey == "" {
		p.DedupeKey = def.DedupeKey
	}
	if len(p.PriorityColumns) == 0 {
		p.PriorityColumns = def.PriorityColumns
	}
}

// SaveConfig writes config.toml into the executable directory and returns
// its path
func SaveConfig(config *AppConfig) (string, error) {
	path := filepath.Join(baseDir(), configFileName)
	return path, SaveConfigTo(path, config)
}

// SaveConfigTo writes config as TOML to path, creating its directory
func SaveConfigTo(path string, config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolveDataDir returns the absolute data directory. Relative paths are
// taken from the executable directory.
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(baseDir(), config.Data.DataDir)
}

// EnsureDataDir makes sure the data directory and its inbox, processed,
// backup and upload subdirectories exist
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	subdirs := []string{
		config.Data.InboxDir,
		config.Data.ProcessedDir,
		config.Data.BackupDir,
		config.Data.UploadDir,
	}
	for _, subdir := range subdirs {
		if subdir == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath returns a path under the data directory. An empty subdir names
// a file in the data directory itself.
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}
