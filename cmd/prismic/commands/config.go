package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/prismic-go/internal/constants"
	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

const configArgumentCount = 2

// Static errors for err113 compliance.
var errInvalidRetries = errors.New("retries must be a non-negative integer")

// Config represents the CLI configuration.
type Config struct {
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Token    string `json:"token,omitempty"    yaml:"token,omitempty"`
	Proxy    string `json:"proxy,omitempty"    yaml:"proxy,omitempty"`
	Output   string `json:"output,omitempty"   yaml:"output,omitempty"`
	Cache    string `json:"cache,omitempty"    yaml:"cache,omitempty"`
	NATSURL  string `json:"nats_url,omitempty" yaml:"nats_url,omitempty"`
	Retries  int    `json:"retries,omitempty"  yaml:"retries,omitempty"`
}

// Masked returns a copy with the access token hidden.
func (c Config) Masked() Config {
	if c.Token != "" {
		c.Token = constants.MaskedSecret
	}

	return c
}

// Set assigns the value of a configuration key.
func (c *Config) Set(key, value string) error {
	switch strings.ReplaceAll(strings.ToLower(key), "-", "_") {
	case "endpoint":
		c.Endpoint = value
	case "token":
		c.Token = value
	case "proxy":
		c.Proxy = value
	case "output":
		switch value {
		case constants.FormatJSON, constants.FormatYAML, constants.FormatTable:
			c.Output = value
		default:
			return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, value)
		}
	case "cache":
		switch prismic.CacheType(value) {
		case prismic.CacheTypeMemory, prismic.CacheTypeNATS, prismic.CacheTypeTiered, prismic.CacheTypeNone:
			c.Cache = value
		default:
			return fmt.Errorf("%w: %s", prismic.ErrUnsupportedCache, value)
		}
	case "nats_url":
		c.NATSURL = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil || retries < 0 {
			return fmt.Errorf("%w: %q", errInvalidRetries, value)
		}

		c.Retries = retries
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage prismic CLI configuration including the endpoint and access token",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigSetTokenCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective CLI configuration with the access token masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig().Masked()

			return renderOutput(cmd.OutOrStdout(), config, []string{"Property", "Value"}, func(table *tablewriter.Table) error {
				_ = table.Append([]string{"Endpoint", config.Endpoint})
				_ = table.Append([]string{"Token", config.Token})
				_ = table.Append([]string{"Proxy", config.Proxy})
				_ = table.Append([]string{"Output", config.Output})
				_ = table.Append([]string{"Cache", config.Cache})
				_ = table.Append([]string{"NATS URL", config.NATSURL})
				_ = table.Append([]string{"Retries", strconv.Itoa(config.Retries)})

				return nil
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value: endpoint, token, proxy, output, cache, nats_url or retries",
		Args:  cobra.ExactArgs(configArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := config.Set(args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			value := args[1]
			if strings.EqualFold(args[0], "token") {
				value = constants.MaskedSecret
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", args[0], value)

			return err
		},
	}
}

func newConfigSetTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token [TOKEN]",
		Short: "Store the repository access token",
		Long:  "Store the repository access token, prompting for it without echo when not given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string

			if len(args) == 1 {
				token = args[0]
			} else {
				read, err := promptSecret(cmd.OutOrStdout(), "Access token: ")
				if err != nil {
					return err
				}

				token = read
			}

			token = strings.TrimSpace(token)
			if token == "" {
				return constants.ErrEmptyToken
			}

			config := loadConfig()
			config.Token = token

			err := saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Access token saved")

			return err
		},
	}
}

func promptSecret(w io.Writer, prompt string) (string, error) {
	_, _ = fmt.Fprint(w, prompt)

	secret, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read access token: %w", err)
	}

	_, _ = fmt.Fprintln(w)

	return string(secret), nil
}

func loadConfig() *Config {
	return &Config{
		Endpoint: viper.GetString("endpoint"),
		Token:    viper.GetString("token"),
		Proxy:    viper.GetString("proxy"),
		Output:   viper.GetString("output"),
		Cache:    viper.GetString("cache"),
		NATSURL:  viper.GetString("nats_url"),
		Retries:  viper.GetInt("retries"),
	}
}

// configFilePath returns the config file in use, defaulting to
// $HOME/.prismic/config.yml.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".prismic", "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
