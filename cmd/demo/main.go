// Command demo fills the configured journal with a week of sample entries.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"tableflip.dev/tabby/pkg/app"
	"tableflip.dev/tabby/pkg/config"
	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/logging"
	"tableflip.dev/tabby/pkg/store"
)

var samples = []entry.Fields{
	{Intention: entry.String("Be present"), Goal: entry.String("Finish the draft"), Reflection: entry.String("Draft done, felt calm.")},
	{Intention: entry.String("Listen more"), Goal: entry.String("Call Sam")},
	{Intention: entry.String("Move"), Goal: entry.String("Walk 5k"), Reflection: entry.String("Rained, walked anyway.")},
	{Goal: entry.String("Inbox zero")},
	{Intention: entry.String("Slow down"), Reflection: entry.String("Too many meetings.")},
	{Intention: entry.String("Be kind"), Goal: entry.String("Review two PRs"), Reflection: entry.String("Good day.")},
	{Intention: entry.String("Rest")},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	p, err := store.Load(cfg, store.WithLocation(cfg.Location))
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer p.Close()

	ctx := context.Background()
	svc := &app.Service{Persistence: p, Logger: logging.New(os.Stderr, false)}
	today := entry.Normalize(svc.Now(), cfg.Location)
	for i, f := range samples {
		day := today.AddDate(0, 0, i-len(samples)+1)
		if err := svc.SaveFields(ctx, day, f); err != nil {
			log.Fatalf("save %s: %v", day.Format(entry.LayoutDay), err)
		}
	}

	all, err := svc.Range(ctx, today.AddDate(0, 0, -len(samples)+1), today)
	if err != nil {
		log.Fatalf("range: %v", err)
	}
	for _, e := range all {
		fmt.Println(e.Day.Format(entry.LayoutDay), entry.Text(e.Intention))
	}
}
