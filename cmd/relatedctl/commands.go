package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tourism-backend/internal/auth"
	"tourism-backend/internal/config"
	"tourism-backend/internal/logger"
	"tourism-backend/internal/metadata"
	"tourism-backend/internal/related"
	"tourism-backend/internal/store"
)

type globalOptions struct {
	configPath string
	verbose    bool
}

func (o *globalOptions) load() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.Load()
}

func (o *globalOptions) logger(cfg *config.Config) (*zap.Logger, error) {
	if !o.verbose {
		return zap.NewNop(), nil
	}
	return logger.New(cfg.Log.Env, cfg.Log.Level)
}

// session holds what every database-backed command needs.
type session struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
	reg   *metadata.Registry
}

func (o *globalOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	log, err := o.logger(cfg)
	if err != nil {
		return nil, err
	}
	s, err := store.New(cmd.Context(), cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &session{cfg: cfg, log: log, store: s, reg: metadata.NewDefaultRegistry()}, nil
}

func (s *session) Close() {
	s.store.Close()
	_ = s.log.Sync()
}

func writeJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

func migrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or widen the content tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.Bootstrap(cmd.Context(), s.reg.AllEntities(), s.log); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d collections ready\n", len(s.reg.AllEntities()))
			return nil
		},
	}
}

func probeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <collection>...",
		Short: "Sample collections and print their capabilities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			prober := related.NewProber(related.NewSQLDatastore(s.store, s.reg), s.log)
			out := make(map[string]related.CollectionCapability, len(args))
			for _, name := range args {
				if s.reg.GetEntity(name) == nil {
					return fmt.Errorf("%w: %s", related.ErrUnknownCollection, name)
				}
				c, err := prober.Probe(cmd.Context(), name)
				if err != nil {
					return err
				}
				out[name] = c
			}
			return writeJSON(cmd, out)
		},
	}
}

func resolveCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "resolve <collection> <id-or-slug>",
		Short: "Resolve the related bundle of one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			entity := s.reg.GetEntity(args[0])
			if entity == nil {
				return fmt.Errorf("%w: %s", related.ErrUnknownCollection, args[0])
			}
			facade, err := related.New(s.cfg.Related, related.NewSQLDatastore(s.store, s.reg), s.log)
			if err != nil {
				return err
			}
			st, ok := facade.SourceTypeFor(entity.Name)
			if !ok {
				return fmt.Errorf("collection %s has no related content", entity.Name)
			}

			rec, err := s.store.FetchRecord(cmd.Context(), entity.Table, entity.PrimaryKey.Field, entity.SlugField(), args[1])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%s %s not found", entity.Name, args[1])
			}
			if err != nil {
				return err
			}

			bundle, warnings, err := facade.Related(cmd.Context(), st.Name, rec, limit)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
			}
			return writeJSON(cmd, bundle)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Records per collection (0 = configured default)")
	return cmd
}

func tokenCmd(opts *globalOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin token signed with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			tok, err := auth.GenerateAccessToken(subject, []string{auth.RoleAdmin}, cfg.Auth.JWTSecret, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "relatedctl", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.AccessTokenTTL, "Token lifetime")
	return cmd
}
