package main

import (
	"bufio"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	appconfig "github.com/wolfman30/salon-call-agent/internal/config"
	"github.com/wolfman30/salon-call-agent/internal/dialogue"
)

func newChatCmd(opts *options, cfg *appconfig.Config) *cobra.Command {
	var showState bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the agent on the terminal",
		Long:  `Reads one message per line from stdin and prints the agent's reply. A confirmed appointment is printed instead of mailed. Type "exit" to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, engine, err := opts.load(cfg, cmd)
			if err != nil {
				return err
			}
			return runChat(cmd, engine, showState)
		},
	}
	cmd.Flags().BoolVar(&showState, "state", false, "Print the slot state after every turn")
	return cmd
}

func runChat(cmd *cobra.Command, engine *dialogue.Engine, showState bool) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	state := dialogue.EmptyState()

	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			fmt.Fprint(out, "> ")
			continue
		case "exit", "quit":
			return nil
		}

		res, err := engine.Respond(line, state)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res.Reply)
		state = res.State
		if res.AutoSend {
			fmt.Fprintf(out, "[Terminanfrage: %s]\n", formatSlots(state.Slots))
			state = dialogue.EmptyState()
		}
		if showState {
			fmt.Fprintf(out, "[%s complete=%t]\n", formatSlots(state.Slots), state.Complete)
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func formatSlots(slots dialogue.SlotSet) string {
	keys := make([]string, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+slots[k])
	}
	return strings.Join(parts, " ")
}
