package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/project-tracker/internal/auth"
	"github.com/nhle/project-tracker/internal/theme"
	"github.com/nhle/project-tracker/internal/tracker"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			version, err := s.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func newOrgCmd(c *cli) *cobra.Command {
	org := &cobra.Command{
		Use:   "org",
		Short: "Manage organizations",
	}

	var slug, email string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			in := tracker.CreateOrganizationInput{Name: args[0], ContactEmail: email}
			if slug != "" {
				in.Slug = &slug
			}
			res := c.newService(s, nil).CreateOrganization(operatorContext(cmd.Context()), in)
			out := cmd.OutOrStdout()
			if !res.Success {
				for _, msg := range res.Errors {
					fmt.Fprintln(out, theme.ErrorStyle.Render("error: ")+msg)
				}
				return errors.New("organization not created")
			}
			fmt.Fprintf(out, "created %s %s\n", res.Entity.Slug, theme.HintStyle.Render(res.Entity.ID))
			return nil
		},
	}
	create.Flags().StringVar(&slug, "slug", "", "slug (derived from NAME when empty)")
	create.Flags().StringVar(&email, "email", "", "contact email")

	list := &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			orgs, err := c.newService(s, nil).ListOrganizations(operatorContext(cmd.Context()))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(orgs) == 0 {
				fmt.Fprintln(out, theme.HintStyle.Render("no organizations"))
				return nil
			}
			fmt.Fprintln(out, theme.HeaderStyle.Render("Organizations"))
			for _, o := range orgs {
				fmt.Fprintf(out, "%-24s %-20s %s\n", o.Name, o.Slug, theme.HintStyle.Render(o.ID))
			}
			return nil
		},
	}

	org.AddCommand(create, list)
	return org
}

func newStatsCmd(c *cli) *cobra.Command {
	var slug string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show project and task counts for an organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			stats, redis := c.openCache(cmd.Context())
			if redis != nil {
				defer redis.Close()
			}
			result, err := c.newService(s, stats).ProjectStats(operatorContext(cmd.Context()), slug)
			if err != nil {
				return err
			}
			if result == nil {
				return fmt.Errorf("organization %q not found", slug)
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme.Stats(slug, *result))
			return nil
		},
	}
	cmd.Flags().StringVar(&slug, "org", "", "organization slug")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func newTokenCmd(c *cli) *cobra.Command {
	var (
		subject string
		orgs    []string
		admin   bool
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := c.jwtSecret()
			if secret == "" {
				return errors.New("auth.jwt_secret is not set; run tracker config init")
			}
			issuer, err := auth.NewTokenIssuer(secret, c.cfg.Auth.Issuer)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = time.Duration(c.cfg.Auth.TokenTTLSec) * time.Second
			}
			tok, err := issuer.Issue(auth.Principal{
				Subject:       strings.TrimSpace(subject),
				Organizations: orgs,
				Admin:         admin,
			}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "subject (caller email)")
	cmd.Flags().StringSliceVar(&orgs, "orgs", nil, "organization slugs the caller may access")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant access to every organization")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to auth.token_ttl_sec)")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}
