package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// repl reads a line, parses the first token as the command, and dispatches.
// Unknown commands are reported back to the user. The loop exits on EOF or
// when the user types "exit" or "quit". Command handlers print their own
// errors; the loop itself never fails.
func (a *App) repl(ctx context.Context) {
	_, _ = printlnFn("subkeeper shell (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	unsubscribe := a.engine.Subscribe(a.printUpdate)
	defer unsubscribe()

	for {
		fmt.Printf("subkeeper (%s)> ", a.config.Mode)
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			_, _ = printlnFn("Available commands: info, refresh, purchase <product>, revoke <product>, entitled <id>, clear, exit")
		case "info":
			a.info(ctx)
		case "refresh":
			a.refresh(ctx)
		case "purchase":
			a.purchase(ctx, args)
		case "revoke":
			a.revoke(args)
		case "entitled":
			a.entitled(args)
		case "clear":
			a.clear(ctx)
		case "exit", "quit":
			_, _ = printlnFn("Bye!")
			return
		default:
			_, _ = printlnFn("Unknown command:", cmd)
		}
	}
}
