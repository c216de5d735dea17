package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
)

func main() {
	gateway := pflag.StringP("gateway", "g", "http://localhost:8000", "Joey gateway base URL")
	timeout := pflag.Duration("timeout", 150*time.Second, "Per-request timeout")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Println(boldGreen("JoeyLLM Chat"))
	fmt.Printf("Gateway: %s\n", boldCyan(*gateway))
	fmt.Println(faint("Commands: /url <address>, /upload <path>, exit"))
	fmt.Println()

	s := newSession(*gateway, *timeout)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			break
		}

		out := dispatch(ctx, s, input)
		fmt.Printf("%s%s\n\n", boldCyan("Joey: "), out)

		if ctx.Err() != nil {
			break
		}
	}
}

// dispatch routes slash commands to ingestion and everything else to chat.
func dispatch(ctx context.Context, s *session, input string) string {
	switch {
	case strings.HasPrefix(input, "/url "):
		return s.FetchURL(ctx, strings.TrimPrefix(input, "/url "))
	case strings.HasPrefix(input, "/upload "):
		return s.Upload(ctx, strings.TrimSpace(strings.TrimPrefix(input, "/upload ")))
	default:
		return s.Ask(ctx, input)
	}
}
