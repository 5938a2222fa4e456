package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/forestrie/go-mmrkv/accumulator"
	"github.com/forestrie/go-mmrkv/formatting"
	"github.com/spf13/cobra"
)

var ErrProofRejected = errors.New("proof does not verify")

func newAppendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "append value...",
		Short: "Append leaf values",
		Args:  cobra.MinimumNArgs(1),
		RunE: withMMR(func(ctx context.Context, cmd *cobra.Command, args []string, m *accumulator.MMR, log logger.Logger) error {
			for _, value := range args {
				r, err := m.Append(ctx, value)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %d %d %s\n", r.ElementIndex, r.LeavesCount, r.ElementsCount, r.RootHash)
			}
			return nil
		}),
	}
}

func newRootHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "root",
		Short: "Print the root hash",
		Args:  cobra.NoArgs,
		RunE: withMMR(func(ctx context.Context, cmd *cobra.Command, args []string, m *accumulator.MMR, log logger.Logger) error {
			root, err := m.RootHash(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), root)
			return nil
		}),
	}
}

type padFlags struct {
	outputSize int
	nullValue  string
}

func (p *padFlags) add(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.outputSize, "output-size", 0, "Pad the output to this many values")
	cmd.Flags().StringVar(&p.nullValue, "null-value", "0x0", "Value used for padding")
}

func (p *padFlags) options() formatting.Options {
	return formatting.Options{OutputSize: p.outputSize, NullValue: p.nullValue}
}

// sizeOption selects a historical size only when --elements-count was given,
// so that 0 means the empty mmr rather than the current size
func sizeOption(cmd *cobra.Command, elementsCount uint64) []accumulator.ProofOption {
	if !cmd.Flags().Changed("elements-count") {
		return nil
	}
	return []accumulator.ProofOption{accumulator.WithElementsCount(elementsCount)}
}

func newPeaksCmd() *cobra.Command {
	var (
		elementsCount uint64
		pad           padFlags
	)
	cmd := &cobra.Command{
		Use:   "peaks",
		Short: "Print the peak hashes, left to right",
		Args:  cobra.NoArgs,
		RunE: withMMR(func(ctx context.Context, cmd *cobra.Command, args []string, m *accumulator.MMR, log logger.Logger) error {
			peaks, err := m.GetPeaks(ctx, sizeOption(cmd, elementsCount)...)
			if err != nil {
				return err
			}
			if pad.outputSize > 0 {
				if peaks, err = formatting.FormatPeaks(peaks, pad.options()); err != nil {
					return err
				}
			}
			for _, p := range peaks {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		}),
	}
	cmd.Flags().Uint64Var(&elementsCount, "elements-count", 0, "Historical mmr size, defaults to the current size")
	pad.add(cmd)
	return cmd
}

func newProofCmd() *cobra.Command {
	var (
		elementsCount uint64
		pad           padFlags
		asCBOR        bool
	)
	cmd := &cobra.Command{
		Use:   "proof element-index",
		Short: "Print the inclusion proof for a leaf",
		Args:  cobra.ExactArgs(1),
		RunE: withMMR(func(ctx context.Context, cmd *cobra.Command, args []string, m *accumulator.MMR, log logger.Logger) error {
			i, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("element index: %w", err)
			}
			proof, err := m.GetProof(ctx, i, sizeOption(cmd, elementsCount)...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asCBOR {
				data, err := accumulator.EncodeProof(proof)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, hexutil.Encode(data))
				return nil
			}

			siblings := proof.Siblings
			if pad.outputSize > 0 {
				if siblings, err = formatting.FormatProof(siblings, pad.options()); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "element_index %d\n", proof.ElementIndex)
			fmt.Fprintf(out, "element_hash %s\n", proof.ElementHash)
			fmt.Fprintf(out, "elements_count %d\n", proof.ElementsCount)
			fmt.Fprintf(out, "root_hash %s\n", proof.RootHash)
			for _, s := range siblings {
				fmt.Fprintf(out, "sibling %s\n", s)
			}
			for _, p := range proof.Peaks {
				fmt.Fprintf(out, "peak %s\n", p)
			}
			return nil
		}),
	}
	cmd.Flags().Uint64Var(&elementsCount, "elements-count", 0, "Historical mmr size, defaults to the current size")
	cmd.Flags().BoolVar(&asCBOR, "cbor", false, "Print the proof as hex encoded cbor")
	pad.add(cmd)
	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify value proof",
		Short: "Verify a hex encoded cbor inclusion proof for value",
		Args:  cobra.ExactArgs(2),
		RunE: withMMR(func(ctx context.Context, cmd *cobra.Command, args []string, m *accumulator.MMR, log logger.Logger) error {
			data, err := hexutil.Decode(args[1])
			if err != nil {
				return fmt.Errorf("proof: %w", err)
			}
			proof, err := accumulator.DecodeProof(data)
			if err != nil {
				return err
			}
			ok, err := m.VerifyProof(proof, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return ErrProofRejected
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		}),
	}
}

// storedRoot bags the accumulator's own peaks at elementsCount, independently
// of any proof
func storedRoot(ctx context.Context, m *accumulator.MMR, elementsCount uint64) (string, error) {
	peaks, err := m.GetPeaks(ctx, accumulator.WithElementsCount(elementsCount))
	if err != nil {
		return "", err
	}
	return m.CalculateRootHash(peaks)
}

func newConsistencyCmd() *cobra.Command {
	var (
		asCBOR       bool
		fromRootFlag string
		toRootFlag   string
	)
	cmd := &cobra.Command{
		Use:   "consistency from-elements-count to-elements-count",
		Short: "Prove and check that an earlier mmr size is a prefix of a later one",
		Args:  cobra.ExactArgs(2),
		RunE: withMMR(func(ctx context.Context, cmd *cobra.Command, args []string, m *accumulator.MMR, log logger.Logger) error {
			from, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("from: %w", err)
			}
			to, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("to: %w", err)
			}
			proof, err := m.GetConsistencyProof(ctx, from, to)
			if err != nil {
				return err
			}
			fromRoot, toRoot := fromRootFlag, toRootFlag
			if fromRoot == "" {
				if fromRoot, err = storedRoot(ctx, m, from); err != nil {
					return err
				}
			}
			if toRoot == "" {
				if toRoot, err = storedRoot(ctx, m, proof.ToElementsCount); err != nil {
					return err
				}
			}
			ok, err := m.VerifyConsistency(proof, fromRoot, toRoot)
			if err != nil {
				return err
			}
			if !ok {
				return ErrProofRejected
			}

			out := cmd.OutOrStdout()
			if asCBOR {
				data, err := accumulator.EncodeConsistencyProof(proof)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, hexutil.Encode(data))
				return nil
			}
			fmt.Fprintf(out, "from %d %s\n", from, fromRoot)
			fmt.Fprintf(out, "to %d %s\n", to, toRoot)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asCBOR, "cbor", false, "Print the proof as hex encoded cbor")
	cmd.Flags().StringVar(&fromRootFlag, "from-root", "", "Trusted root at the earlier size, defaults to the accumulator's")
	cmd.Flags().StringVar(&toRootFlag, "to-root", "", "Trusted root at the later size, defaults to the accumulator's")
	return cmd
}
