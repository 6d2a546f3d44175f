package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/helloapi"
	"github.com/sagarc03/helloapi/database"
	helloapihttp "github.com/sagarc03/helloapi/http"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	// config commands must work without a valid configuration.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a new configuration file",
	Long: `Write a new configuration file interactively.

You will be prompted for:
  - Environment (development or production)
  - Server port
  - Database type and connection string

Existing files are kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var (
	initOutput string
	initForce  bool
)

func init() {
	configInitCmd.Flags().StringVarP(&initOutput, "output", "o", "config.yaml", "file to write")
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
}

// initAnswers are the values collected by config init.
type initAnswers struct {
	Env    helloapi.Environment
	Port   int
	DBType string
	DSN    string
}

type fileConfig struct {
	Env      string       `yaml:"env"`
	Server   fileServer   `yaml:"server"`
	Errors   fileErrors   `yaml:"errors"`
	Database fileDatabase `yaml:"database"`
	Log      fileLog      `yaml:"log"`
}

type fileLog struct {
	Level string `yaml:"level"`
}

type fileServer struct {
	Port int `yaml:"port"`
}

type fileErrors struct {
	Path string `yaml:"path"`
	Mode string `yaml:"mode"`
}

type fileDatabase struct {
	Type        string `yaml:"type"`
	DSN         string `yaml:"dsn,omitempty"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// renderConfig encodes the answers as a YAML configuration file.
func renderConfig(a initAnswers) ([]byte, error) {
	level := "info"
	if a.Env.IsDevelopment() {
		level = "debug"
	}

	fc := fileConfig{
		Env:    a.Env.String(),
		Server: fileServer{Port: a.Port},
		Errors: fileErrors{
			Path: helloapihttp.DefaultErrorPath,
			Mode: string(helloapihttp.ErrorModeReexecute),
		},
		Database: fileDatabase{
			Type:        a.DBType,
			DSN:         a.DSN,
			AutoMigrate: a.DBType != database.TypeNone,
		},
		Log: fileLog{Level: level},
	}

	out, err := yaml.Marshal(&fc)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}

func writeConfigFile(path string, data []byte, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		return fmt.Errorf("create config file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	return f.Close()
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if !initForce {
		if _, err := os.Stat(initOutput); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", initOutput)
		}
	}

	answers, err := promptAnswers()
	if err != nil {
		return handlePromptError(err)
	}

	data, err := renderConfig(answers)
	if err != nil {
		return err
	}

	if err := writeConfigFile(initOutput, data, initForce); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s.\n", initOutput)
	return nil
}

func promptAnswers() (initAnswers, error) {
	var a initAnswers

	envSelect := promptui.Select{
		Label: "Environment",
		Items: []string{string(helloapi.Production), string(helloapi.Development)},
	}
	_, env, err := envSelect.Run()
	if err != nil {
		return a, err
	}
	a.Env = helloapi.ParseEnvironment(env)

	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: "5000",
		Validate: func(input string) error {
			port, convErr := strconv.Atoi(input)
			if convErr != nil || port < 1 || port > 65535 {
				return errors.New("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	port, err := portPrompt.Run()
	if err != nil {
		return a, err
	}
	a.Port, _ = strconv.Atoi(port)

	dbSelect := promptui.Select{
		Label: "Incident database",
		Items: []string{database.TypeNone, database.TypeSQLite, database.TypePostgres},
	}
	_, a.DBType, err = dbSelect.Run()
	if err != nil {
		return a, err
	}

	if a.DBType == database.TypeNone {
		return a, nil
	}

	dsnDefault := "helloapi.db"
	if a.DBType == database.TypePostgres {
		dsnDefault = "postgres://localhost:5432/helloapi?sslmode=disable"
	}
	dsnPrompt := promptui.Prompt{
		Label:   "Connection string",
		Default: dsnDefault,
		Validate: func(input string) error {
			if input == "" {
				return errors.New("connection string is required")
			}
			return nil
		},
	}
	a.DSN, err = dsnPrompt.Run()
	if err != nil {
		return a, err
	}

	return a, nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
