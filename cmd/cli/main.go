package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/recipebox/recipebox-go/internal/client"
	"github.com/recipebox/recipebox-go/internal/model"
)

const usage = `usage: recipebox <command> [flags]

commands:
  register   create an account
  login      log in and remember the session
  logout     forget the session
  whoami     show the logged in user
  list       list recipes (-category to filter)
  get        show a recipe: get <id>
  create     create a recipe
  update     replace a recipe: update [flags] <id>
  delete     delete a recipe: delete <id>

environment:
  RECIPEBOX_URL      server base URL (default http://localhost:8080)
  RECIPEBOX_SESSION  session file (default in the user config dir)
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	api *client.Client
	in  *bufio.Reader
	out io.Writer

	// tty is set when stdin is a terminal; passwords are then read without echo.
	tty bool
}

func newApp() (*app, error) {
	sessionPath := os.Getenv("RECIPEBOX_SESSION")
	if sessionPath == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		sessionPath = p
	}

	sessions := client.NewSessionStore(sessionPath)
	if err := sessions.Load(); err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	baseURL := os.Getenv("RECIPEBOX_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &app{
		api: client.New(baseURL, sessions),
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
		tty: term.IsTerminal(int(os.Stdin.Fd())),
	}, nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		if err := a.api.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "logged out")
		return nil
	case "whoami":
		user, err := a.api.Me(ctx)
		if err != nil {
			return err
		}
		return a.printJSON(user)
	case "list":
		return a.list(ctx, args)
	case "get":
		id, err := singleArg("get", args)
		if err != nil {
			return err
		}
		recipe, err := a.api.GetRecipe(ctx, id)
		if err != nil {
			return err
		}
		return a.printJSON(recipe)
	case "create":
		return a.create(ctx, args)
	case "update":
		return a.update(ctx, args)
	case "delete":
		id, err := singleArg("delete", args)
		if err != nil {
			return err
		}
		if err := a.api.DeleteRecipe(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "deleted", id)
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("username", "", "display name")
	phone := fs.String("phone", "", "phone number (login identity)")
	role := fs.String("role", string(model.RoleCaterer), "customer or caterer")
	businessName := fs.String("business-name", "", "business name (caterers)")
	businessAddress := fs.String("business-address", "", "business address (caterers)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := a.readPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := a.api.Register(ctx, model.RegisterRequest{
		Username:        *username,
		Phone:           *phone,
		Password:        password,
		Role:            model.Role(*role),
		BusinessName:    *businessName,
		BusinessAddress: *businessAddress,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "registered %s (%s)\n", user.Username, user.Role)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	phone := fs.String("phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := a.readPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := a.api.Login(ctx, *phone, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "logged in as %s\n", user.Username)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	category := fs.String("category", "", "only recipes in this category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		recipes []model.RecipeResponse
		err     error
	)
	if *category != "" {
		recipes, err = a.api.ListRecipesByCategory(ctx, *category)
	} else {
		recipes, err = a.api.ListRecipes(ctx)
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tINGREDIENTS")
	for _, r := range recipes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", r.ID, r.Name, r.Category, len(r.Ingredients))
	}
	return tw.Flush()
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	req := recipeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	recipe, err := a.api.CreateRecipe(ctx, req())
	if err != nil {
		return err
	}
	return a.printJSON(recipe)
}

func (a *app) update(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	req := recipeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := singleArg("update", fs.Args())
	if err != nil {
		return err
	}

	recipe, err := a.api.UpdateRecipe(ctx, id, req())
	if err != nil {
		return err
	}
	return a.printJSON(recipe)
}

// stringList collects a repeatable flag.
type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, ", ") }
func (l *stringList) Set(v string) error { *l = append(*l, v); return nil }

func recipeFlags(fs *flag.FlagSet) func() model.RecipeRequest {
	name := fs.String("name", "", "recipe name")
	description := fs.String("description", "", "recipe description")
	image := fs.String("image", "", "image reference")
	category := fs.String("category", "", "category (default Uncategorized)")
	var ingredients stringList
	fs.Var(&ingredients, "ingredient", "ingredient, repeat for each one")

	return func() model.RecipeRequest {
		return model.RecipeRequest{
			Name:        *name,
			Description: *description,
			Ingredients: ingredients,
			Image:       *image,
			Category:    *category,
		}
	}
}

func (a *app) readPassword(prompt string) (string, error) {
	if a.tty {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func singleArg(cmd string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s expects exactly one recipe id", cmd)
	}
	return args[0], nil
}
