package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/briefpay/backend"
	"github.com/tbxark/briefpay/flow"
	"github.com/tbxark/briefpay/intake"
	"github.com/tbxark/briefpay/payment"
	"github.com/tbxark/briefpay/prefill"
	"github.com/tbxark/briefpay/types"
	"github.com/tbxark/briefpay/ui"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "briefform",
		Usage: "Fill in a content brief and pay for it from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.json",
				Usage: "path to config file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "decline",
				Usage: "simulate a declined payment with this message",
			},
		},
		Action: func(c *cli.Context) error {
			config, err := loadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if c.Bool("debug") {
				config.Debug = true
			}
			return startApp(c.Context, config, c.String("decline"))
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, config *Config, decline string) error {
	if config.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}
	ctx = intake.WithSessionKey(ctx, "briefform")

	confirm := payment.RedirectOnConfirm
	if decline != "" {
		confirm = payment.DeclineOnConfirm(payment.ErrorKindCard, decline)
	}
	submission := flow.New(
		flow.Config{Origin: config.Origin, Container: config.Container},
		backend.NewClient(config.APIBaseURL),
		payment.NewLocalAdapter(confirm),
		ui.NewWriterPage(os.Stdout),
		flow.WithTransitionHook(func(from, to flow.State) {
			if to != flow.StateIdle && to != flow.StateFailed {
				fmt.Printf("... %s\n", to)
			}
		}),
	)
	if err := submission.Initialize(config.PublishableKey); err != nil {
		return err
	}

	prefiller, err := newPrefiller(ctx, config)
	if err != nil {
		return err
	}
	briefAgent, err := intake.NewAgent(
		"BriefIntake",
		"An agent that collects a content brief via conversation before payment",
		intake.NewMemoryStore(nil),
		prefiller,
	)
	if err != nil {
		return err
	}
	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: briefAgent,
	})

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Tell us about the content you need, e.g. \"topic: Go generics\".")
	for {
		fmt.Print("You: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("Input closed. Bye.")
			return nil
		}
		input = strings.TrimSpace(input)
		iter := runner.Run(ctx, []*schema.Message{schema.UserMessage(input)})
		for {
			event, ok := iter.Next()
			if !ok {
				break
			}
			if event.Err != nil {
				return event.Err
			}
			msg, mErr := event.Output.MessageOutput.GetMessage()
			if mErr != nil {
				return mErr
			}
			fmt.Printf("\nAssistant: %v\n======\n", msg.Content)
		}

		draft, dErr := briefAgent.Draft(ctx)
		if dErr != nil {
			return dErr
		}
		if draft.Cancelled {
			return nil
		}
		if !draft.Ready {
			continue
		}
		if sErr := submission.Submit(ctx, &draft.Values); sErr != nil {
			if errors.Is(sErr, flow.ErrSubmissionDisabled) {
				return sErr
			}
			if err := briefAgent.Reopen(ctx, types.MessageOf(sErr, "")); err != nil {
				return err
			}
			continue
		}
		fmt.Printf("Redirecting to %s\n", submission.ReturnURL(submission.BriefID()))
		return nil
	}
}

func newPrefiller(ctx context.Context, config *Config) (prefill.Prefiller, error) {
	local := prefill.NewLocalPrefiller()
	if config.OpenAI.APIKey == "" {
		return local, nil
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  config.OpenAI.APIKey,
		Model:   config.OpenAI.Model,
		BaseURL: config.OpenAI.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	tool, err := prefill.NewToolBasedPrefiller(cm)
	if err != nil {
		return nil, err
	}
	return prefill.NewFailbackPrefiller(tool, local), nil
}
