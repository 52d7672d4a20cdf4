package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loykin/moby9098/internal/finder"
)

// envPrefix lets every flag be set from the environment, e.g. MOBY9098_PS_TOKEN.
const envPrefix = "MOBY9098_PS"

// PSFlags holds the flags of the root command
type PSFlags struct {
	Name    string
	Token   string
	JSON    bool
	Signal  string
	Timeout time.Duration
}

func buildRoot() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "moby9098-ps",
		Short: "List running moby9098 wrappers",
		Long: `List processes started as "moby9098 <unique> <command> [args...]".

Examples:
  moby9098-ps                          # every wrapper
  moby9098-ps --token=job-42           # the wrapper started with token job-42
  moby9098-ps --token=job-42 --signal=TERM
  moby9098-ps --name=mywrap --json     # wrapper installed under another name`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := PSFlags{
				Name:    v.GetString("name"),
				Token:   v.GetString("token"),
				JSON:    v.GetBool("json"),
				Signal:  v.GetString("signal"),
				Timeout: v.GetDuration("timeout"),
			}
			return runPS(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}

	root.Flags().String("name", finder.DefaultName, "wrapper program name to match in argv[0]")
	root.Flags().String("token", "", "only match this uniqueness token")
	root.Flags().Bool("json", false, "print JSON instead of a table")
	root.Flags().String("signal", "", "send this signal (name or number) to every match and the commands it launched")
	root.Flags().Duration("timeout", 10*time.Second, "give up scanning the process table after this long")
	if err := v.BindPFlags(root.Flags()); err != nil {
		panic(err)
	}
	return root
}

func runPS(ctx context.Context, w io.Writer, f PSFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	insts, err := finder.Find(ctx, finder.Query{Name: f.Name, Token: f.Token})
	if err != nil {
		return fmt.Errorf("scan processes: %w", err)
	}
	if insts == nil {
		insts = []finder.Instance{}
	}

	if f.Signal != "" {
		sig, err := finder.ParseSignal(f.Signal)
		if err != nil {
			return err
		}
		if err := finder.Signal(ctx, insts, sig); err != nil {
			return fmt.Errorf("signal %s: %w", f.Signal, err)
		}
	}

	if f.JSON {
		return printJSON(w, insts)
	}
	return printTable(w, insts)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printTable(w io.Writer, insts []finder.Instance) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PID\tTOKEN\tSTARTED\tCOMMAND")
	for _, in := range insts {
		started := "-"
		if !in.StartedAt.IsZero() {
			started = in.StartedAt.Format(time.RFC3339)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", in.PID, in.Token, started, strings.Join(append([]string{in.Command}, in.Args...), " "))
	}
	return tw.Flush()
}
