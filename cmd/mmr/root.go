package main

import (
	"context"
	"errors"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-mmrkv/accumulator"
	"github.com/forestrie/go-mmrkv/store"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mmr",
		Short:         "Key-value backed merkle mountain range",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addConfigFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newAppendCmd(),
		newRootHashCmd(),
		newPeaksCmd(),
		newProofCmd(),
		newVerifyCmd(),
		newConsistencyCmd(),
		newBenchCmd(),
	)
	return cmd
}

type runFunc func(ctx context.Context, cmd *cobra.Command, args []string, m *accumulator.MMR, log logger.Logger) error

// wrapStore lets a command instrument the store before the accumulator is
// created over it
type wrapStore func(store.Store) store.Store

func withMMR(fn runFunc, wrap ...wrapStore) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		logger.New(cfg.LogLevel)
		log := logger.Sugar.WithServiceName("mmr")

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		s, closeStore, err := openStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, closeStore())
		}()
		for _, w := range wrap {
			s = w(s)
		}

		m, err := openMMR(s, cfg, log)
		if err != nil {
			return err
		}
		log.Debugf("store %s, hasher %s, id %s", cfg.Store, m.Hasher().Name(), m.ID())
		return fn(ctx, cmd, args, m, log)
	}
}
