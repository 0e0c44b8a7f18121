package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dark-devil9/UrNav/internal/client"
	"github.com/dark-devil9/UrNav/internal/dispatch"
	"github.com/dark-devil9/UrNav/internal/intent"
	"github.com/dark-devil9/UrNav/internal/types"
)

const (
	envPrefix = "URNAV"

	// Jaipur city centre, the same default the API uses.
	defaultLat = 26.9124
	defaultLon = 75.7873
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	v        *viper.Viper
	logger   *slog.Logger
	client   *client.Client
	tokens   client.FileToken
	detector *intent.Detector
	router   *dispatch.Router

	loc        *intent.Location
	chatUserID string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), detector: intent.NewDetector()}

	root := &cobra.Command{
		Use:   "urnav-chat",
		Short: "Find places, plan your day and chat about travel from the terminal",
		Long: `urnav-chat talks to the UrNav API.

Every flag can also be set through the environment with the URNAV_ prefix,
for example URNAV_API, URNAV_LAT, URNAV_LON or URNAV_TOKEN_FILE.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("api", client.DefaultBaseURL, "UrNav API base URL")
	flags.Float64("lat", defaultLat, "Your latitude")
	flags.Float64("lon", defaultLon, "Your longitude")
	flags.String("token-file", "", "Access token file (default: <user config dir>/urnav/token)")
	flags.BoolP("verbose", "v", false, "Log API traffic to stderr")

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlags(flags)

	root.AddCommand(
		newChatCmd(a),
		newAskCmd(a),
		newIntentCmd(a),
		newSignupCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newMeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	a.logger = slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))

	path := a.v.GetString("token-file")
	if path == "" {
		p, err := client.DefaultTokenPath()
		if err != nil {
			return err
		}
		path = p
	}
	a.tokens = client.FileToken{Path: path}
	a.client = client.New(a.v.GetString("api"),
		client.WithTokenSource(a.tokens),
		client.WithLogger(a.logger),
	)
	a.router = dispatch.NewRouter(a.client, a.logger)
	return nil
}

// location names the configured coordinates once per process.
func (a *app) location(ctx context.Context) intent.Location {
	if a.loc == nil {
		loc := a.router.CurrentLocation(ctx, a.v.GetFloat64("lat"), a.v.GetFloat64("lon"))
		a.loc = &loc
	}
	return *a.loc
}

// answer routes text to the endpoint its intent names. Questions no rule
// recognises go to the chat assistant instead.
func (a *app) answer(ctx context.Context, text string) string {
	res := a.detector.Detect(text)
	loc := a.location(ctx)
	a.logger.DebugContext(ctx, "Intent detected",
		slog.String("intent", res.Intent),
		slog.Float64("confidence", res.Confidence),
		slog.String("location", loc.Name))

	if res.Intent == intent.GeneralQuery {
		return a.askAnything(ctx, text, loc)
	}

	resp := a.router.Route(ctx, res, loc, text)
	if !resp.Success {
		return resp.Error
	}
	return intent.GenerateResponse(res, &loc, resp.Data)
}

// askAnything keeps the assistant's user id so follow-ups share a conversation.
func (a *app) askAnything(ctx context.Context, text string, loc intent.Location) string {
	lat, lon := loc.Lat, loc.Lon
	resp, err := a.client.Chat(ctx, types.ChatRequest{
		Message:  text,
		UserID:   a.chatUserID,
		Location: &types.ChatLocation{Lat: &lat, Lon: &lon, Name: loc.Name},
	})
	if err != nil {
		a.logger.WarnContext(ctx, "Chat request failed", slog.Any("error", err))
		return "Sorry, I couldn't reach the assistant: " + err.Error()
	}
	a.chatUserID = resp.UserID
	return resp.Response
}
