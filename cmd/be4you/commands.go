package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"be4you/internal/model/activitymodel"
	"be4you/internal/model/authmodel"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var errUsage = errors.New("usage")

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: be4you <command> [flags]

Commands:
  login            -email -password
  register         -first-name -last-name -email -password -confirm-password
  google-login     -id-token -email [-first-name -last-name -photo-url]
  forgot-password  -email
  logout
  whoami
  activities list
  activities get    -id
  activities create -file payload.json
  activities update -id -file payload.json
  activities delete -id

Environment:
  API_URL (required), AUTH_STORE_BACKEND=file|memory|redis, AUTH_STORE_DIR,
  REDIS_URL, NATS_URL, HTTP_TIMEOUT, NAVIGATION_DELAY, LOG_LEVEL
`)
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) int {
	var (
		result any
		ok     bool
		err    error
	)

	switch cmd {
	case "login":
		result, ok, err = a.login(ctx, args)
	case "register":
		result, ok, err = a.register(ctx, args)
	case "google-login":
		result, ok, err = a.googleLogin(ctx, args)
	case "forgot-password":
		result, ok, err = a.forgotPassword(ctx, args)
	case "logout":
		a.auth.Logout(ctx)
		fmt.Fprintln(a.stderr, "Signed out.")
		return exitOK
	case "whoami":
		rec, found := a.auth.CurrentUser(ctx)
		if !found {
			fmt.Fprintln(a.stderr, "Not signed in.")
			return exitFailure
		}
		result, ok = rec.User, true
	case "activities":
		result, ok, err = a.activitiesCmd(ctx, args)
	default:
		fmt.Fprintf(a.stderr, "be4you: unknown command %q\n", cmd)
		usage(a.stderr)
		return exitUsage
	}

	if errors.Is(err, errUsage) {
		return exitUsage
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "be4you: %v\n", err)
		return exitFailure
	}
	if encErr := writeJSON(a.stdout, result); encErr != nil {
		a.logger.Warn("write output failed", "error", encErr)
		return exitFailure
	}
	if !ok {
		return exitFailure
	}
	return exitOK
}

func (a *app) login(ctx context.Context, args []string) (any, bool, error) {
	fs := a.flagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := parse(fs, args); err != nil {
		return nil, false, err
	}
	resp := a.auth.Login(ctx, authmodel.LoginRequest{Email: *email, Password: *password})
	return resp, resp.IsSuccess, nil
}

func (a *app) register(ctx context.Context, args []string) (any, bool, error) {
	fs := a.flagSet("register")
	req := authmodel.RegisterRequest{}
	fs.StringVar(&req.FirstName, "first-name", "", "first name")
	fs.StringVar(&req.LastName, "last-name", "", "last name")
	fs.StringVar(&req.Email, "email", "", "account email")
	fs.StringVar(&req.Password, "password", "", "account password")
	fs.StringVar(&req.ConfirmPassword, "confirm-password", "", "repeat the password")
	if err := parse(fs, args); err != nil {
		return nil, false, err
	}
	resp := a.auth.Register(ctx, req)
	return resp, resp.IsSuccess, nil
}

func (a *app) googleLogin(ctx context.Context, args []string) (any, bool, error) {
	fs := a.flagSet("google-login")
	req := authmodel.GoogleLoginRequest{}
	fs.StringVar(&req.IDToken, "id-token", "", "Google id token")
	fs.StringVar(&req.Email, "email", "", "Google account email")
	fs.StringVar(&req.FirstName, "first-name", "", "first name")
	fs.StringVar(&req.LastName, "last-name", "", "last name")
	photo := fs.String("photo-url", "", "profile photo url")
	if err := parse(fs, args); err != nil {
		return nil, false, err
	}
	if *photo != "" {
		req.PhotoURL = photo
	}
	resp := a.auth.GoogleLogin(ctx, req)
	return resp, resp.IsSuccess, nil
}

func (a *app) forgotPassword(ctx context.Context, args []string) (any, bool, error) {
	fs := a.flagSet("forgot-password")
	email := fs.String("email", "", "account email")
	if err := parse(fs, args); err != nil {
		return nil, false, err
	}
	resp := a.auth.ForgotPassword(ctx, *email)
	return resp, resp.IsSuccess, nil
}

func (a *app) activitiesCmd(ctx context.Context, args []string) (any, bool, error) {
	if len(args) == 0 {
		fmt.Fprintln(a.stderr, "be4you: activities needs a subcommand: list|get|create|update|delete")
		return nil, false, errUsage
	}

	sub := args[0]
	fs := a.flagSet("activities " + sub)
	id := fs.String("id", "", "activity id")
	file := fs.String("file", "", "path to an activity payload JSON file, - for stdin")
	if err := parse(fs, args[1:]); err != nil {
		return nil, false, err
	}

	switch sub {
	case "list":
		resp := a.activities.List(ctx)
		return resp, resp.IsSuccess, nil
	case "get":
		resp := a.activities.Get(ctx, *id)
		return resp, resp.IsSuccess, nil
	case "delete":
		resp := a.activities.Delete(ctx, *id)
		return resp, resp.IsSuccess, nil
	case "create", "update":
		payload, err := readPayload(*file)
		if err != nil {
			return nil, false, err
		}
		if sub == "create" {
			resp := a.activities.CreateWithItems(ctx, payload)
			return resp, resp.IsSuccess, nil
		}
		resp := a.activities.Update(ctx, *id, payload)
		return resp, resp.IsSuccess, nil
	default:
		fmt.Fprintf(a.stderr, "be4you: unknown activities subcommand %q\n", sub)
		return nil, false, errUsage
	}
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// parse 解析失败时 flag 包已经打印了帮助信息
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func readPayload(path string) (activitymodel.ActivityPayload, error) {
	var payload activitymodel.ActivityPayload
	if path == "" {
		return payload, fmt.Errorf("-file is required")
	}

	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return payload, fmt.Errorf("read payload: %w", err)
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("decode payload %s: %w", path, err)
	}
	return payload, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
