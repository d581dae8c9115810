package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cardbook/internal/addressbook"
	"cardbook/internal/calendar"
	"cardbook/internal/card"
	"cardbook/internal/common/logging"
	"cardbook/internal/config"
	"cardbook/internal/contact"
	"cardbook/internal/query"
	"cardbook/internal/template"
)

func main() {
	search := flag.String("search", "", "only contacts matching this term")
	verbose := flag.Bool("verbose", false, "verbose contact output")
	book := flag.String("book", "", "address book for new contacts")
	flag.Parse()

	logger, err := logging.NewZapLogger(logging.LogConfig{
		Level: logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		Name:  "cardbook",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logging.SetGlobalLogger(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	col, err := addressbook.FromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to open address books: %v", err)
	}

	q := query.Query(query.Any)
	if *search != "" {
		q = query.Term(*search)
	}

	switch flag.Arg(0) {
	case "list", "":
		if err := list(ctx, col, q); err != nil {
			log.Fatal(err)
		}
	case "show":
		if err := show(ctx, col, flag.Arg(1), *verbose); err != nil {
			log.Fatal(err)
		}
	case "template":
		fmt.Print(template.NewTemplate(cfg.PrivateObjects))
	case "new":
		if err := newContact(ctx, col, cfg, *book); err != nil {
			log.Fatal(err)
		}
	case "birthdays":
		if err := birthdays(ctx, col, q); err != nil {
			log.Fatal(err)
		}
	default:
		fmt.Fprintf(os.Stderr,
			"usage: cardbook [flags] list|show <uid>|template|new|birthdays\n")
		os.Exit(2)
	}
}

func list(ctx context.Context, col *addressbook.Collection, q query.Query) error {
	contacts, err := col.Search(ctx, q)
	if err != nil {
		return err
	}
	for _, ct := range contacts {
		short, _ := shortUID(ctx, col, ct.UID())
		fmt.Printf("%-8s %-12s %s\n", short, ct.AddressBook, ct.Card.FormattedName())
	}
	return nil
}

func show(ctx context.Context, col *addressbook.Collection, uid string, verbose bool) error {
	if uid == "" {
		return fmt.Errorf("show needs a UID argument")
	}
	if err := col.Load(ctx, query.Any); err != nil {
		return err
	}
	shortUIDs, err := col.ShortUIDs(ctx)
	if err != nil {
		return err
	}
	ct, ok := shortUIDs[uid]
	if !ok {
		for _, candidate := range shortUIDs {
			if candidate.UID() == uid {
				ct = candidate
				ok = true
				break
			}
		}
	}
	if !ok {
		return fmt.Errorf("no contact with UID %s", uid)
	}
	fmt.Print(ct.Pretty(verbose))
	return nil
}

func newContact(ctx context.Context, col *addressbook.Collection, cfg *config.Config, book string) error {
	if book == "" {
		if len(cfg.AddressBooks) == 0 {
			return fmt.Errorf("no address book configured")
		}
		book = cfg.AddressBooks[0].Name
	}
	ab, err := col.Book(book)
	if err != nil {
		return err
	}
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}
	ct, err := contact.FromTemplate(input, card.Options{
		Version:        cfg.PreferredVersion,
		PrivateObjects: cfg.PrivateObjects,
		LocalizeDates:  cfg.LocalizeDates,
	})
	if err != nil {
		return err
	}
	if err := ct.Write(ctx, ab.Store(), false); err != nil {
		return err
	}
	fmt.Printf("Created contact %s with UID %s\n", ct, ct.UID())
	return nil
}

func birthdays(ctx context.Context, col *addressbook.Collection, q query.Query) error {
	contacts, err := col.Search(ctx, q)
	if err != nil {
		return err
	}
	data, err := calendar.Encode(calendar.Birthdays(contacts))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func shortUID(ctx context.Context, col *addressbook.Collection, uid string) (string, error) {
	shortUIDs, err := col.ShortUIDs(ctx)
	if err != nil || uid == "" {
		return "", err
	}
	for length := 1; length <= len(uid); length++ {
		if _, ok := shortUIDs[uid[:length]]; ok {
			return uid[:length], nil
		}
	}
	return uid, nil
}
