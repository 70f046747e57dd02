package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/annel0/horde-survivors/internal/eventbus"
)

const (
	defaultNatsURL = nats.DefaultURL
	timeFormat     = "2006-01-02T15:04:05Z"
)

func main() {
	var (
		natsURL    = flag.String("nats", defaultNatsURL, "NATS server URL")
		stream     = flag.String("stream", "GAME_EVENTS", "JetStream stream name")
		command    = flag.String("cmd", "tail", "Command: tail, stats")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		runID      = flag.String("run", "", "Run ID filter")
		since      = flag.String("since", "1h", "Time duration since now (e.g., 1h, 30m)")
		limit      = flag.Int("limit", 100, "Maximum number of events")
		follow     = flag.Bool("follow", false, "Follow new events (like tail -f)")
		idle       = flag.Duration("idle", 2*time.Second, "Stop after this long without messages (non-follow)")
	)
	flag.Parse()

	startTime, err := parseSinceTime(*since, time.Now())
	if err != nil {
		log.Fatalf("❌ Invalid since: %v", err)
	}

	nc, err := nats.Connect(*natsURL, nats.Name("event-cli"))
	if err != nil {
		log.Fatalf("❌ Failed to connect to NATS: %v", err)
	}
	defer nc.Drain()

	js, err := nc.JetStream()
	if err != nil {
		log.Fatalf("❌ JetStream unavailable: %v", err)
	}

	opts := &ReadOptions{
		Stream:     *stream,
		EventTypes: parseStringList(*eventTypes),
		RunID:      *runID,
		Since:      startTime,
		Limit:      *limit,
		Follow:     *follow,
		Idle:       *idle,
	}

	switch *command {
	case "tail":
		if err := tailEvents(js, opts); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}
	case "stats":
		opts.Follow = false
		if err := showStats(js, opts); err != nil {
			log.Fatalf("❌ Stats failed: %v", err)
		}
	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, stats")
		os.Exit(1)
	}
}

// ReadOptions задаёт выборку событий из стрима
type ReadOptions struct {
	Stream     string
	EventTypes []string
	RunID      string
	Since      time.Time
	Limit      int
	Follow     bool
	Idle       time.Duration
}

// readEvents читает события из стрима начиная с opts.Since и отдаёт
// подходящие под фильтр в fn. Без Follow останавливается после Idle тишины.
func readEvents(js nats.JetStreamContext, opts *ReadOptions, fn func(*eventbus.Envelope)) (int, error) {
	subject := eventbus.SubjectPrefix + ".*"
	if len(opts.EventTypes) == 1 {
		subject = eventbus.Subject(opts.EventTypes[0])
	}

	sub, err := js.SubscribeSync(subject,
		nats.BindStream(opts.Stream),
		nats.StartTime(opts.Since),
		nats.AckNone(),
	)
	if err != nil {
		return 0, fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	filter := eventbus.Filter{Types: opts.EventTypes}
	count := 0
	for opts.Limit <= 0 || count < opts.Limit {
		wait := opts.Idle
		if opts.Follow {
			wait = time.Hour
		}
		msg, err := sub.NextMsg(wait)
		if errors.Is(err, nats.ErrTimeout) {
			if opts.Follow {
				continue
			}
			break
		}
		if err != nil {
			return count, fmt.Errorf("next message: %w", err)
		}

		// Чужие забеги отсекаются по заголовку, без разбора тела
		if run := msg.Header.Get(eventbus.HeaderRunID); opts.RunID != "" && run != "" && run != opts.RunID {
			continue
		}

		var ev eventbus.Envelope
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			continue
		}
		if !matches(&ev, filter, opts.RunID) {
			continue
		}
		fn(&ev)
		count++
	}
	return count, nil
}

func matches(ev *eventbus.Envelope, f eventbus.Filter, runID string) bool {
	if runID != "" && ev.CorrelationID != runID {
		return false
	}
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if t == ev.EventType {
			return true
		}
	}
	return false
}

// tailEvents выводит события в реальном времени
func tailEvents(js nats.JetStreamContext, opts *ReadOptions) error {
	fmt.Printf("🎬 Tailing events (limit: %d, follow: %v)\n", opts.Limit, opts.Follow)

	count, err := readEvents(js, opts, func(ev *eventbus.Envelope) {
		fmt.Println(formatEvent(ev))
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n📊 Total events: %d\n", count)
	return nil
}

// showStats выводит число событий по типам
func showStats(js nats.JetStreamContext, opts *ReadOptions) error {
	fmt.Println("📊 Event statistics")

	byType := make(map[string]int)
	total, err := readEvents(js, opts, func(ev *eventbus.Envelope) {
		byType[ev.EventType]++
	})
	if err != nil {
		return err
	}

	fmt.Printf("Since: %s\n", opts.Since.UTC().Format(timeFormat))
	fmt.Printf("Total events: %d\n", total)
	fmt.Println("\nBy event type:")
	for _, line := range formatStats(byType) {
		fmt.Println(line)
	}
	return nil
}

// formatEvent выводит событие в читаемом формате
func formatEvent(ev *eventbus.Envelope) string {
	return fmt.Sprintf("[%s] %s [%s] run=%s %s",
		ev.Timestamp.Format("15:04:05"),
		ev.Source,
		ev.EventType,
		ev.CorrelationID,
		ev.Payload)
}

func formatStats(byType map[string]int) []string {
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	lines := make([]string, 0, len(types))
	for _, t := range types {
		lines = append(lines, fmt.Sprintf("  %s: %d events", t, byType[t]))
	}
	return lines
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseSinceTime парсит относительное время типа "1h", "30m"
// или абсолютное в формате timeFormat
func parseSinceTime(since string, from time.Time) (time.Time, error) {
	if since == "" {
		return from, nil
	}

	duration, err := time.ParseDuration(since)
	if err != nil {
		// Пробуем парсить как абсолютное время
		return time.Parse(timeFormat, since)
	}

	return from.Add(-duration), nil
}
