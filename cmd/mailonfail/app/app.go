// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package app contains the mailonfail root command.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/mailonfail/internal/config"
	"github.com/matt-FFFFFF/mailonfail/internal/ctxlog"
	"github.com/matt-FFFFFF/mailonfail/internal/notify"
	"github.com/matt-FFFFFF/mailonfail/internal/relay"
	"github.com/matt-FFFFFF/mailonfail/internal/report"
	"github.com/matt-FFFFFF/mailonfail/internal/supervisor"
	"github.com/urfave/cli/v3"
)

const (
	logLevelFlag           = "log-level"
	logFormatFlag          = "log-format"
	chunkSizeFlag          = "chunk-size"
	notifySpawnFailureFlag = "notify-spawn-failure"
	dryRunFlag             = "dry-run"
	smtpTimeoutFlag        = "smtp-timeout"
	argsTerminator         = "--"
)

// Process exit statuses other than the child's own.
const (
	ExitFailure     = 1
	ExitUsage       = 2
	ExitUnavailable = 69 // EX_UNAVAILABLE, the notification could not be delivered
	ExitConfig      = 78 // EX_CONFIG
	ExitSpawnFailed = 127
)

var (
	// ErrMissingConfig is returned when no configuration source is given.
	ErrMissingConfig = errors.New("missing configuration file argument")
	// ErrMissingCommand is returned when no command follows the configuration source.
	ErrMissingCommand = errors.New("missing command to run")
	// ErrChunkSize is returned for a non-positive --chunk-size.
	ErrChunkSize = errors.New("chunk size must be at least 1 byte")
)

// SenderFactory selects how notifications leave the process.
// Tests replace it to capture messages.
var SenderFactory = func(cmd *cli.Command, cfg *config.Config) report.Sender {
	if cmd.Bool(dryRunFlag) {
		return notify.NewWriterSender(cmd.Root().ErrWriter)
	}

	return notify.NewSMTPSender(cfg, notify.WithTimeout(cmd.Duration(smtpTimeoutFlag)))
}

// New returns the root command. Flags are only recognised before CONFIG,
// everything after it belongs to the supervised command.
func New() *cli.Command {
	stopAfterConfig := 1

	return &cli.Command{
		Name:  "mailonfail",
		Usage: "run a command and e-mail its output if it fails",
		UsageText: "mailonfail [flags] CONFIG [--] COMMAND [ARGS...]\n\n" +
			"mailonfail /etc/mailonfail.yaml -- backup.sh --full",
		Description: `mailonfail runs COMMAND, mirrors its standard output and standard error
live and keeps a full copy of both. If the command exits with a non-zero
status, an e-mail containing the command line, the exit code and both
captured streams is sent through the SMTP server described in CONFIG.

CONFIG is a YAML file with smtp_host, smtp_port, user, password, from and to.
Every field can be overridden with an environment variable prefixed with
` + config.EnvPrefix + `, e.g. ` + config.EnvPrefix + `PASSWORD.
CONFIG may also be a go-getter URL, see https://github.com/hashicorp/go-getter.

mailonfail exits with the command's own exit status. Otherwise it exits with
2 on usage errors, 78 on configuration errors, 127 if the command could not
be started and 69 if the notification could not be delivered.`,
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		Writer:          os.Stdout,
		ErrWriter:       os.Stderr,
		StopOnNthArg:    &stopAfterConfig,
		HideHelpCommand: true,
		// Errors are turned into exit statuses by ExitCode, not by the framework.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  logLevelFlag,
				Usage: "Log level: DEBUG, INFO, WARN or ERROR. Overrides " + ctxlog.LevelEnvVar() + ".",
			},
			&cli.StringFlag{
				Name:  logFormatFlag,
				Usage: "Log format: pretty or json.",
				Value: ctxlog.FormatPretty,
			},
			&cli.IntFlag{
				Name:  chunkSizeFlag,
				Usage: "Maximum number of bytes read from the command's pipes at a time.",
				Value: relay.DefaultChunkSize,
			},
			&cli.BoolFlag{
				Name:  notifySpawnFailureFlag,
				Usage: "Also send a notification when the command cannot be started.",
			},
			&cli.BoolFlag{
				Name:  dryRunFlag,
				Usage: "Write the notification to standard error instead of sending it.",
			},
			&cli.DurationFlag{
				Name:  smtpTimeoutFlag,
				Usage: "Maximum time to spend connecting and talking to the mail server.",
				Value: notify.DefaultTimeout,
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	ctx, err := withLogger(ctx, cmd)
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}

	src, argv, err := splitArgs(cmd.Args().Slice())
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}

	chunkSize := cmd.Int(chunkSizeFlag)
	if chunkSize < 1 {
		return cli.Exit(fmt.Sprintf("%s: %d", ErrChunkSize, chunkSize), ExitUsage)
	}

	cfg, err := config.Load(ctx, src)
	if err != nil {
		return cli.Exit(err.Error(), ExitConfig)
	}

	reporter := report.New(SenderFactory(cmd, cfg), cfg.From, cfg.To)

	sup := &supervisor.Supervisor{
		Stdout:    cmd.Root().Writer,
		Stderr:    cmd.Root().ErrWriter,
		ChunkSize: chunkSize,
	}

	outcome, err := sup.Run(ctx, argv)
	if err != nil {
		return spawnFailed(ctx, cmd, reporter, outcome, err)
	}

	if serr := outcome.StreamErr(); serr != nil {
		ctxlog.Warn(ctx, "output capture incomplete", "error", serr)
	}

	if _, err := reporter.Report(notifyContext(ctx), outcome); err != nil {
		return cli.Exit(err.Error(), ExitUnavailable)
	}

	if code := outcome.ExitCode(); code != 0 {
		return cli.Exit("", childExitStatus(code))
	}

	return nil
}

func spawnFailed(ctx context.Context, cmd *cli.Command, reporter *report.Reporter, outcome *supervisor.Outcome, err error) error {
	var spawnErr *supervisor.SpawnError
	if !errors.As(err, &spawnErr) {
		return cli.Exit(err.Error(), ExitUsage)
	}

	if cmd.Bool(notifySpawnFailureFlag) {
		if _, rerr := reporter.Report(notifyContext(ctx), outcome); rerr != nil {
			ctxlog.Error(ctx, spawnErr.Error())
			return cli.Exit(rerr.Error(), ExitUnavailable)
		}
	}

	return cli.Exit(spawnErr.Error(), ExitSpawnFailed)
}

// notifyContext keeps the logger and values of ctx but not its cancellation,
// so a run killed on cancellation is still reported. --smtp-timeout bounds the send.
func notifyContext(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func withLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.IsSet(logLevelFlag) {
		level, err := ctxlog.ParseLevel(cmd.String(logLevelFlag))
		if err != nil {
			return ctx, err
		}

		ctxlog.LevelVar.Set(level)
	}

	logger, err := ctxlog.NewLogger(cmd.String(logFormatFlag), cmd.Root().ErrWriter)
	if err != nil {
		return ctx, err
	}

	return ctxlog.New(ctx, logger), nil
}

// splitArgs separates the configuration source from the command line,
// dropping a "--" between them.
func splitArgs(args []string) (string, []string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", nil, ErrMissingConfig
	}

	src, argv := args[0], args[1:]

	if len(argv) > 0 && argv[0] == argsTerminator {
		argv = argv[1:]
	}

	if len(argv) == 0 || argv[0] == "" {
		return "", nil, ErrMissingCommand
	}

	return src, argv, nil
}

// childExitStatus maps an outcome's exit code onto a process exit status.
// Negative sentinels cannot be passed through.
func childExitStatus(code int) int {
	if code < 0 {
		return ExitFailure
	}

	return code
}

// ExitCode returns the process exit status for an error returned by the
// root command's Run.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	// Anything else comes from argument parsing.
	return ExitUsage
}
