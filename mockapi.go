package main

import (
	"math/rand/v2"

	"github.com/ricardonunez-io/ranger/internal/mockserver"
	"github.com/spf13/cobra"
)

func newMockAPICommand(cfg *config) *cobra.Command {
	var (
		addr string
		seed uint64
	)

	cmd := &cobra.Command{
		Use:   "mock-api",
		Short: "Serve the mock metrics and logs API",
		Long: `Serve synthetic metrics (GET /metrics) and logs (GET /logs) for the
mock telemetry backend. Point MOCK_API_ENDPOINT at this server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.MockAddr
			}
			var opts []mockserver.Option
			if seed != 0 {
				opts = append(opts, mockserver.WithGenerator(mockserver.NewGenerator(rand.New(rand.NewPCG(seed, seed)))))
			}
			return mockserver.New(opts...).ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default MOCK_API_ADDR or :8080)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible data (0 picks a random seed)")
	return cmd
}
