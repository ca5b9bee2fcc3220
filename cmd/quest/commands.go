package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/crafting"
	"github.com/jwebster45206/quest-engine/pkg/engine"
	"github.com/jwebster45206/quest-engine/pkg/gameerr"
	"github.com/jwebster45206/quest-engine/pkg/rules"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/muesli/reflow/wordwrap"
)

const wrapWidth = 72

var errUsage = errors.New("usage")

const usageText = `Usage: quest <command> [arguments]

Commands:
  new [-owner NAME]            start a new session
  show <session>               print the session
  actions <session>            list legal actions
  act <session> <action...>    take an action (key, label or synonym)
  answer <session> <answer>    answer the cave riddle
  restart <session>            reset the session
  inventory <session>          list items
  use <session> <item>         use an item by ID
  recipes <session>            list recipes craftable now
  recipes --all                list every recipe
  craft <session> <recipe>     craft a recipe by key
  play [-owner NAME]           interactive game on stdin
`

type cli struct {
	eng   *engine.Engine
	in    io.Reader
	out   io.Writer
	width int
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.out, usageText)
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "new":
		fs := flag.NewFlagSet("new", flag.ContinueOnError)
		fs.SetOutput(c.out)
		owner := fs.String("owner", "local", "owner of the session")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		s, err := c.eng.CreateSession(ctx, *owner)
		if err != nil {
			return err
		}
		return c.printSession(ctx, s)
	case "play":
		fs := flag.NewFlagSet("play", flag.ContinueOnError)
		fs.SetOutput(c.out)
		owner := fs.String("owner", "local", "owner of the session")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		return c.play(ctx, *owner)
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usageText)
		return nil
	case "recipes":
		if len(rest) > 0 && (rest[0] == "--all" || rest[0] == "-all") {
			c.writeRecipes("Все рецепты:", crafting.Catalog())
			return nil
		}
	}

	if len(rest) == 0 {
		return fmt.Errorf("%w: %s needs a session ID", errUsage, cmd)
	}
	id, err := uuid.Parse(rest[0])
	if err != nil {
		return fmt.Errorf("%w: invalid session ID %q", errUsage, rest[0])
	}
	arg := strings.Join(rest[1:], " ")

	switch cmd {
	case "show":
		s, err := c.eng.GetSession(ctx, id)
		if err != nil {
			return err
		}
		return c.printSession(ctx, s)
	case "actions":
		return c.printActions(ctx, id)
	case "act":
		if arg == "" {
			return fmt.Errorf("%w: act needs an action", errUsage)
		}
		return c.then(ctx)(c.eng.ApplyTurn(ctx, id, arg))
	case "answer":
		if arg == "" {
			return fmt.Errorf("%w: answer needs an answer", errUsage)
		}
		return c.then(ctx)(c.eng.AnswerRiddle(ctx, id, arg))
	case "restart":
		return c.then(ctx)(c.eng.Restart(ctx, id))
	case "inventory":
		return c.printInventory(ctx, id)
	case "use":
		itemID, err := uuid.Parse(arg)
		if err != nil {
			return fmt.Errorf("%w: invalid item ID %q", errUsage, arg)
		}
		return c.then(ctx)(c.eng.UseItem(ctx, id, itemID))
	case "recipes":
		return c.printRecipes(ctx, id)
	case "craft":
		if arg == "" {
			return fmt.Errorf("%w: craft needs a recipe key", errUsage)
		}
		return c.then(ctx)(c.eng.Craft(ctx, id, arg))
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// then prints the session returned by an engine call.
func (c *cli) then(ctx context.Context) func(*state.Session, error) error {
	return func(s *state.Session, err error) error {
		if err != nil {
			return err
		}
		return c.printSession(ctx, s)
	}
}

func (c *cli) printSession(ctx context.Context, s *state.Session) error {
	fmt.Fprintf(c.out, "Сессия: %s\n", s.ID)
	fmt.Fprintf(c.out, "Локация: %s | Здоровье: %d/%d\n\n", s.Location, s.Health, state.MaxHealth)
	fmt.Fprintln(c.out, wordwrap.String(s.Narrative, c.width))
	fmt.Fprintln(c.out)

	if s.IsTerminal() {
		fmt.Fprintln(c.out, "Игра завершена. Используйте restart, чтобы начать заново.")
		return nil
	}
	if s.RiddleActive() {
		fmt.Fprintf(c.out, "Варианты ответа: %s\n", strings.Join(rules.RiddleOptions, ", "))
	}
	return c.printActions(ctx, s.ID)
}

func (c *cli) printActions(ctx context.Context, id uuid.UUID) error {
	actions, err := c.eng.LegalActions(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Действия:")
	for i, a := range actions {
		fmt.Fprintf(c.out, "  %d. %s (%s)\n", i+1, c.eng.Label(string(a)), a)
	}
	return nil
}

func (c *cli) printInventory(ctx context.Context, id uuid.UUID) error {
	items, err := c.eng.ListInventory(ctx, id)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(c.out, "Инвентарь пуст.")
		return nil
	}
	fmt.Fprintln(c.out, "Инвентарь:")
	for i, it := range items {
		fmt.Fprintf(c.out, "  %d. %s: %s [%s]\n", i+1, it.Name, it.Description, it.ID)
	}
	return nil
}

func (c *cli) printRecipes(ctx context.Context, id uuid.UUID) error {
	recipes, err := c.eng.AvailableRecipes(ctx, id)
	if err != nil {
		return err
	}
	if len(recipes) == 0 {
		fmt.Fprintln(c.out, "Нет доступных рецептов.")
		return nil
	}
	c.writeRecipes("Рецепты:", recipes)
	return nil
}

func (c *cli) writeRecipes(header string, recipes []crafting.Recipe) {
	fmt.Fprintln(c.out, header)
	for _, r := range recipes {
		fmt.Fprintf(c.out, "  %s (%s): %s -> %s\n", r.Title, r.Key, strings.Join(r.Requires, " + "), r.Result.Name)
	}
}

// play runs one session interactively. A number picks a listed action;
// other input is a command or free-form action text.
func (c *cli) play(ctx context.Context, owner string) error {
	s, err := c.eng.CreateSession(ctx, owner)
	if err != nil {
		return err
	}
	if err := c.printSession(ctx, s); err != nil {
		return err
	}

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "quit", "exit":
			return nil
		case "inv", "inventory":
			err = c.printInventory(ctx, s.ID)
		case "recipes":
			err = c.printRecipes(ctx, s.ID)
		case "craft":
			err = c.then(ctx)(c.eng.Craft(ctx, s.ID, arg))
		case "answer":
			err = c.then(ctx)(c.eng.AnswerRiddle(ctx, s.ID, arg))
		case "restart":
			err = c.then(ctx)(c.eng.Restart(ctx, s.ID))
		case "use":
			err = c.useByIndex(ctx, s.ID, arg)
		default:
			err = c.then(ctx)(c.eng.ApplyTurn(ctx, s.ID, c.resolveChoice(ctx, s.ID, line)))
		}
		if err != nil {
			if errors.Is(err, gameerr.ErrInternal) {
				return err
			}
			fmt.Fprintf(c.out, "Ошибка: %s\n", describe(err))
		}
	}
}

// resolveChoice maps a 1-based menu number to its action key.
func (c *cli) resolveChoice(ctx context.Context, id uuid.UUID, input string) string {
	n, err := strconv.Atoi(input)
	if err != nil {
		return input
	}
	actions, err := c.eng.LegalActions(ctx, id)
	if err != nil || n < 1 || n > len(actions) {
		return input
	}
	return string(actions[n-1])
}

func (c *cli) useByIndex(ctx context.Context, id uuid.UUID, arg string) error {
	items, err := c.eng.ListInventory(ctx, id)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(items) {
		return gameerr.Validation("choose an item number from the inventory")
	}
	return c.then(ctx)(c.eng.UseItem(ctx, id, items[n-1].ID))
}

// describe renders an error for the player.
func describe(err error) string {
	var ge *gameerr.Error
	if errors.As(err, &ge) && ge.Message != "" {
		return ge.Message
	}
	return err.Error()
}
