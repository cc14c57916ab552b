package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/nhle/project-tracker/internal/credential"
	"github.com/nhle/project-tracker/internal/model"
)

func newConfigCmd(c *cli) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration and store the JWT secret in the keyring",
		Long: "init writes the effective configuration to the config file. The JWT secret goes to the " +
			"system keyring instead of the file; one is generated when none is configured. " +
			"On a terminal the settings are edited in a form first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *c.cfg
			if interactive(cmd) {
				if err := initForm(&cfg).Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return errors.New("config init aborted")
					}
					return err
				}
			}

			secret := strings.TrimSpace(cfg.Auth.JWTSecret)
			if secret == "" {
				secret = c.jwtSecret()
			}
			if secret == "" {
				var err error
				if secret, err = generateSecret(); err != nil {
					return err
				}
			}

			creds, err := credential.Open(cfg.Credentials)
			if err != nil {
				return err
			}
			if err := creds.Set(credential.JWTSecretKey, secret); err != nil {
				return err
			}
			cfg.Auth.JWTSecret = ""

			if err := model.SaveConfig(c.configPath, &cfg); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wrote %s\n", c.configPath)
			fmt.Fprintln(out, "stored auth.jwt_secret in keyring")
			return nil
		},
	})
	return cfgCmd
}

// interactive reports whether the command reads from a terminal.
func interactive(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func initForm(cfg *model.AppConfig) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Placeholder(":8080").
				Value(&cfg.Server.Addr).
				Validate(validateRequired("Listen address")),
			huh.NewSelect[string]().
				Title("Database driver").
				Options(
					huh.NewOption("SQLite", "sqlite"),
					huh.NewOption("PostgreSQL", "pgx"),
				).
				Value(&cfg.Database.Driver),
			huh.NewInput().
				Title("Database DSN").
				Description("File path for SQLite, connection URL for PostgreSQL").
				Value(&cfg.Database.DSN).
				Validate(validateRequired("Database DSN")),
			huh.NewInput().
				Title("JWT secret").
				Description("Kept in the system keyring. Leave empty to generate one").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Auth.JWTSecret),
			huh.NewConfirm().
				Title("Strict organization scoping").
				Value(&cfg.Scoping.Strict),
		),
	)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
