// cmd/insightsctl/main.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"startup-insights/internal/common/config"
	"startup-insights/internal/common/logger"
)

var rootArgs struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "insightsctl",
		Short:         "Score, analyze and browse startups from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rootArgs.configPath, "config", "", "config file (defaults to configs/config.yaml)")
	root.PersistentFlags().BoolVarP(&rootArgs.verbose, "verbose", "v", false, "log at debug level to stderr")

	root.AddCommand(newScoreCmd(), newAnalyzeCmd(), newStartupsCmd(), newWorkflowCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if rootArgs.configPath != "" {
		return config.LoadFromFile(rootArgs.configPath)
	}
	return config.Load()
}

func newLogger() logger.Logger {
	if !rootArgs.verbose {
		return logger.NewNoOpLogger()
	}
	return logger.NewZapAdapter(logger.New("debug", "console"))
}

// readProfile decodes the raw form values from path, or stdin for "-".
// Numbers stay json.Number so they are parsed like form input.
func readProfile(cmd *cobra.Command, path string) (map[string]interface{}, error) {
	var r io.Reader
	if path == "" || path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var values map[string]interface{}
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return values, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
