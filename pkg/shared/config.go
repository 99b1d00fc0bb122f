package shared

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved configuration of an entry point. LoadConfig reads
// it from YAML; ConfigFromEnv and the environment overrides fill in
// endpoints and secrets.
type Config struct {
	Network string `yaml:"network"`

	RPC struct {
		Endpoint          string `yaml:"endpoint"`
		WebSocketEndpoint string `yaml:"ws_endpoint"`
	} `yaml:"rpc"`

	Payer struct {
		Keypair string `yaml:"keypair"`
	} `yaml:"payer"`

	Pinata struct {
		APIKey     string `yaml:"api_key"`
		SecretKey  string `yaml:"secret_key"`
		BaseURL    string `yaml:"base_url"`
		GatewayURL string `yaml:"gateway_url"`
	} `yaml:"pinata"`

	Upload struct {
		ListenAddr string `yaml:"listen_addr"`
		// Endpoint is the base URL of a running upload server. When empty,
		// uploads go to Pinata directly.
		Endpoint string `yaml:"endpoint"`
	} `yaml:"upload"`

	Launch struct {
		Commitment     string        `yaml:"commitment"`
		PollInterval   time.Duration `yaml:"poll_interval"`
		SigningTimeout time.Duration `yaml:"signing_timeout"`
	} `yaml:"launch"`
}

var dotenvLoadOnce sync.Once

// ConfigFromEnv resolves configuration from the environment and the
// nearest .env file.
func ConfigFromEnv() (Config, error) {
	loadDotEnvIfPresent()

	var config Config
	applyEnv(&config)
	return finalize(config)
}

// LoadConfig reads a YAML configuration file and applies environment
// overrides on top of it.
func LoadConfig(path string) (Config, error) {
	loadDotEnvIfPresent()

	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(content, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	applyEnv(&config)
	return finalize(config)
}

// RequirePinata checks that upload credentials are present.
func (c Config) RequirePinata() error {
	if c.Pinata.APIKey == "" {
		return fmt.Errorf("PINATA_API_KEY is required")
	}
	if c.Pinata.SecretKey == "" {
		return fmt.Errorf("PINATA_SECRET_KEY is required")
	}
	return nil
}

// RequirePayer checks that a payer keypair is configured.
func (c Config) RequirePayer() error {
	if c.Payer.Keypair == "" {
		return fmt.Errorf("PAYER_KEYPAIR is required")
	}
	return nil
}

func applyEnv(config *Config) {
	overrides := []struct {
		target *string
		keys   []string
	}{
		{&config.Network, []string{"SOLANA_NETWORK", "NETWORK"}},
		{&config.RPC.Endpoint, []string{"SOLANA_RPC_URL", "RPC_URL"}},
		{&config.RPC.WebSocketEndpoint, []string{"SOLANA_WS_URL", "WS_URL"}},
		{&config.Payer.Keypair, []string{"PAYER_KEYPAIR", "SOLANA_KEYPAIR"}},
		{&config.Pinata.APIKey, []string{"PINATA_API_KEY"}},
		{&config.Pinata.SecretKey, []string{"PINATA_SECRET_KEY", "PINATA_SECRET_API_KEY"}},
		{&config.Pinata.GatewayURL, []string{"PINATA_GATEWAY_URL"}},
		{&config.Upload.ListenAddr, []string{"UPLOAD_LISTEN_ADDR"}},
		{&config.Upload.Endpoint, []string{"UPLOAD_API_URL"}},
	}
	for _, override := range overrides {
		if value := firstNonEmptyEnv(override.keys...); value != "" {
			*override.target = value
		}
	}
}

func finalize(config Config) (Config, error) {
	network, err := NormalizeNetwork(config.Network)
	if err != nil {
		return Config{}, err
	}
	config.Network = network

	if strings.TrimSpace(config.RPC.Endpoint) == "" {
		config.RPC.Endpoint = RPCEndpoint(network)
	}
	if strings.TrimSpace(config.RPC.WebSocketEndpoint) == "" {
		wsEndpoint, err := WebSocketEndpoint(config.RPC.Endpoint)
		if err != nil {
			return Config{}, err
		}
		config.RPC.WebSocketEndpoint = wsEndpoint
	}
	if strings.TrimSpace(config.Upload.ListenAddr) == "" {
		config.Upload.ListenAddr = ":8080"
	}
	if strings.TrimSpace(config.Launch.Commitment) == "" {
		config.Launch.Commitment = "confirmed"
	}
	return config, nil
}

func loadDotEnvIfPresent() {
	dotenvLoadOnce.Do(func() {
		startPaths := make([]string, 0, 2)
		if cwd, err := os.Getwd(); err == nil {
			startPaths = append(startPaths, cwd)
		}
		if _, currentFile, _, ok := runtime.Caller(0); ok {
			startPaths = append(startPaths, filepath.Dir(currentFile))
		}
		loadNearestDotEnv(startPaths)
	})
}

// loadNearestDotEnv walks up from each start path and loads the first .env
// that sets at least one variable. It returns the loaded path.
func loadNearestDotEnv(startPaths []string) string {
	seenCandidates := make(map[string]struct{})
	for _, start := range startPaths {
		current := start
		for {
			candidate := filepath.Join(current, ".env")
			if _, exists := seenCandidates[candidate]; !exists {
				seenCandidates[candidate] = struct{}{}
				if _, statErr := os.Stat(candidate); statErr == nil {
					if loadDotEnvFile(candidate) {
						return candidate
					}
				}
			}

			parent := filepath.Dir(current)
			if parent == current {
				break
			}
			current = parent
		}
	}
	return ""
}

func loadDotEnvFile(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	loadedAny := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		separator := strings.Index(line, "=")
		if separator <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:separator])
		if !isValidEnvKey(key) {
			continue
		}
		if _, alreadySet := os.LookupEnv(key); alreadySet {
			continue
		}

		value := strings.TrimSpace(line[separator+1:])
		if len(value) >= 2 {
			first := value[0]
			last := value[len(value)-1]
			if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		if setErr := os.Setenv(key, value); setErr == nil {
			loadedAny = true
		}
	}
	return loadedAny
}

func isValidEnvKey(key string) bool {
	if key == "" {
		return false
	}
	for index, character := range key {
		if (character >= 'A' && character <= 'Z') ||
			(character >= 'a' && character <= 'z') ||
			(index > 0 && character >= '0' && character <= '9') ||
			character == '_' {
			continue
		}
		return false
	}
	return true
}

func firstNonEmptyEnv(keys ...string) string {
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" {
			return value
		}
	}
	return ""
}
