package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/jira-digest/internal/auth"
	"github.com/spec-kit/jira-digest/internal/config"
	"github.com/spec-kit/jira-digest/internal/domain"
	"github.com/spec-kit/jira-digest/internal/events"
	"github.com/spec-kit/jira-digest/internal/notify"
	"github.com/spec-kit/jira-digest/internal/observability"
	"github.com/spec-kit/jira-digest/internal/persistence"
	"github.com/spec-kit/jira-digest/internal/service"
)

const usage = `usage: digest <command> [flags]

commands:
  build   build a digest with the configured Jira credentials
  token   print a signed bearer token for the HTTP API
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch args[0] {
	case "build":
		return runBuild(ctx, cfg, args[1:], stdout, stderr)
	case "token":
		return runToken(cfg, args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// buildFlags holds the parsed flags of the build command. Unset flags leave
// the configured defaults in place.
type buildFlags struct {
	input   service.BuildInput
	publish bool
}

func parseBuildFlags(args []string, stderr io.Writer) (*buildFlags, error) {
	var (
		lookback      int
		accounts      string
		commentLength int
		publish       bool
	)
	flagSet := pflag.NewFlagSet("build", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.IntVar(&lookback, "lookback", 0, "days of ticket activity to include (default DIGEST_LOOKBACK_DAYS)")
	flagSet.StringVar(&accounts, "accounts", "", "comma-separated account ids; empty forces self mode (default DIGEST_ACCOUNT_IDS)")
	flagSet.IntVar(&commentLength, "comment-length", 0, "maximum characters of comment text (default DIGEST_COMMENT_LENGTH)")
	flagSet.BoolVar(&publish, "publish", false, "also publish the digest to the configured Redis slot and Slack channel")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}

	out := &buildFlags{publish: publish, input: service.BuildInput{Trigger: "cli"}}
	if flagSet.Changed("lookback") {
		out.input.LookbackDays = &lookback
	}
	if flagSet.Changed("comment-length") {
		out.input.CommentLength = &commentLength
	}
	if flagSet.Changed("accounts") {
		out.input.AccountIDs = config.SplitList(accounts)
		if out.input.AccountIDs == nil {
			out.input.AccountIDs = []string{}
		}
	}
	return out, nil
}

func runBuild(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	flags, err := parseBuildFlags(args, stderr)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	deps := service.DigestDependencies{
		Gateways: service.JiraGateways(*cfg, nil, logger),
		Metrics:  observability.NewMetrics(),
		Logger:   logger,
	}
	if flags.publish {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()

		publishers := notify.Configured(cfg.Notification, redis.Client())
		dispatcher := events.NewInMemoryDispatcher()
		service.NewNotificationService(dispatcher, logger, publishers...).RegisterHandlers()
		deps.Dispatcher = dispatcher
		deps.Gateways = service.JiraGateways(*cfg, redis.Client(), logger)
	}

	result, err := service.NewDigestService(*cfg, deps).Build(ctx, flags.input)
	if err != nil {
		logger.Error("digest build failed", zap.Error(err))
		return err
	}

	writeWarnings(stderr, result.Warnings)
	_, err = io.WriteString(stdout, result.Text)
	return err
}

func writeWarnings(w io.Writer, warnings []domain.Warning) {
	for _, warning := range warnings {
		parts := []string{"warning:", string(warning.Unit)}
		if warning.Key != "" {
			parts = append(parts, warning.Key)
		}
		fmt.Fprintf(w, "%s: %s\n", strings.Join(parts, " "), warning.Message)
	}
}

func runToken(cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	var subject, subjectType string
	flagSet := pflag.NewFlagSet("token", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&subject, "subject", "", "subject id recorded in the token")
	flagSet.StringVar(&subjectType, "type", string(domain.SubjectTypeOperator), "subject type: SERVICE or OPERATOR")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if subject == "" {
		return errors.New("--subject is required")
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	signed, meta, err := tokens.GenerateToken(subject, domain.SubjectType(strings.ToUpper(subjectType)))
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "expires at %s\n", meta.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z"))
	_, err = fmt.Fprintln(stdout, signed)
	return err
}
