package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/onotes"
	"github.com/aretw0/onotes/pkg/core"
	"github.com/aretw0/onotes/pkg/notify"
	"github.com/aretw0/onotes/pkg/reminders"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to generate")
	perNote := flag.Int("reminders", 3, "Reminders per note")
	adapter := flag.String("adapter", "fs", "Storage adapter: fs, diskv or sqlite")
	format := flag.String("format", "json", "Document format: json or yaml")
	keep := flag.Bool("keep", false, "Keep the benchmark data after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "onotes_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	opts := []onotes.Option{
		onotes.WithLogger(logger),
		onotes.WithAdapter(*adapter),
		onotes.WithFormat(*format),
	}
	ctx := context.Background()

	store, err := onotes.Open(benchDir, opts...)
	if err != nil {
		panic(err)
	}

	// Every mutation rewrites the whole document, so generation is itself
	// the write benchmark.
	fmt.Printf("Generating %d notes (%d reminders each) with %s/%s in %s...\n", *count, *perNote, *adapter, *format, benchDir)
	now := time.Now()
	startGen := time.Now()
	for i := 0; i < *count; i++ {
		var times []time.Time
		for j := 0; j < *perNote; j++ {
			times = append(times, now.Add(time.Duration(i*(*perNote)+j+1)*time.Minute))
		}
		if _, err := store.AddNote(ctx, core.NoteInput{
			Title:     fmt.Sprintf("Note %d", i),
			Body:      "This is a benchmark note.",
			Todos:     []string{"first", "second"},
			Reminders: times,
		}); err != nil {
			panic(err)
		}
	}
	genDuration := time.Since(startGen)

	// Load into a fresh store to simulate a new process.
	startLoad := time.Now()
	fresh, err := onotes.Open(benchDir, opts...)
	if err != nil {
		panic(err)
	}
	loadDuration := time.Since(startLoad)

	clock := reminders.NewVirtualScheduler(now)
	inbox := notify.NewLog()
	engine := reminders.NewEngine(inbox, clock)

	startCold := time.Now()
	res := engine.Reconcile(fresh.Snapshot())
	coldDuration := time.Since(startCold)

	startWarm := time.Now()
	engine.Reconcile(fresh.Snapshot())
	warmDuration := time.Since(startWarm)

	startFire := time.Now()
	clock.Advance(time.Duration(*count*(*perNote)+1) * time.Minute)
	fireDuration := time.Since(startFire)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notes, %d reminders):\n", *count, len(res.Scheduled))
	fmt.Printf("  Generate:        %v\n", genDuration)
	fmt.Printf("  Load:            %v\n", loadDuration)
	fmt.Printf("  Reconcile (new): %v\n", coldDuration)
	fmt.Printf("  Reconcile (noop):%v\n", warmDuration)
	fmt.Printf("  Fire all:        %v (delivered %d)\n", fireDuration, inbox.Len())
	fmt.Printf("--------------------------------------------------\n")
}
