// Command oneshotbench drives a batch of one-shot channels concurrently
// and reports delivery counts, elapsed time and throughput. It doubles as a sample
// consumer of every dependency this module wires in: golang.org/x/sync
// for the worker fan-out, golang.org/x/term for output detection,
// golang.org/x/text/message for the summary line, golang.org/x/net/trace
// for a live /debug/requests view, and github.com/google/pprof/profile
// for a merged CPU+heap capture.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime"
	"runtime/pprof"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/google/pprof/profile"

	"github.com/oneshotgo/oneshot"
	"github.com/oneshotgo/oneshot/internal/chantrace"
	"github.com/oneshotgo/oneshot/internal/runid"
)

func main() {
	var (
		count       = flag.Int("n", 100000, "number of channels to exercise")
		workers     = flag.Int("workers", runtime.GOMAXPROCS(0), "concurrent sender/receiver goroutine pairs")
		recvDelay   = flag.Duration("delay", 0, "artificial delay before each send, to exercise RecvCtx waiting")
		recvDeadln  = flag.Duration("deadline", 0, "if nonzero, receive with this RecvCtx deadline instead of blocking Recv")
		profilePath = flag.String("profile", "", "if set, write a merged CPU+heap pprof profile here")
		serveAddr   = flag.String("serve", "", "if set, serve golang.org/x/net/trace's /debug/requests on this address while running")
	)
	flag.Parse()

	if err := run(*count, *workers, *recvDelay, *recvDeadln, *profilePath, *serveAddr); err != nil {
		log.Fatal(err)
	}
}

func run(count, workers int, delay, deadline time.Duration, profilePath, serveAddr string) error {
	id := runid.New()
	log.Printf("run %s: %d channels across %d workers", id, count, workers)

	if serveAddr != "" {
		go func() {
			log.Printf("run %s: serving /debug/requests on %s", id, serveAddr)
			if err := http.ListenAndServe(serveAddr, nil); err != nil {
				log.Printf("run %s: trace server stopped: %v", id, err)
			}
		}()
	}

	var cpuProf, heapProf *os.File
	if profilePath != "" {
		var err error
		cpuProf, err = os.CreateTemp("", "oneshotbench-cpu-*.pprof")
		if err != nil {
			return fmt.Errorf("create cpu profile temp file: %w", err)
		}
		defer os.Remove(cpuProf.Name())
		if err := pprof.StartCPUProfile(cpuProf); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
	}

	rec := chantrace.NewRecorder(id)
	defer rec.Finish()

	var delivered, disconnected, timedOut int64
	start := time.Now()

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			return exerciseOne(ctx, i, delay, deadline, rec, &delivered, &disconnected, &timedOut)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("worker group: %w", err)
	}
	elapsed := time.Since(start)

	if profilePath != "" {
		pprof.StopCPUProfile()
		cpuProf.Close()

		var err error
		heapProf, err = os.CreateTemp("", "oneshotbench-heap-*.pprof")
		if err != nil {
			return fmt.Errorf("create heap profile temp file: %w", err)
		}
		defer os.Remove(heapProf.Name())
		runtime.GC()
		if err := pprof.WriteHeapProfile(heapProf); err != nil {
			return fmt.Errorf("write heap profile: %w", err)
		}
		heapProf.Close()

		if err := mergeProfiles(cpuProf.Name(), heapProf.Name(), profilePath); err != nil {
			return fmt.Errorf("merge profiles: %w", err)
		}
		log.Printf("run %s: wrote merged profile to %s", id, profilePath)
	}

	printSummary(id, count, delivered, disconnected, timedOut, elapsed)
	return nil
}

func exerciseOne(ctx context.Context, i int, delay, deadline time.Duration, rec *chantrace.Recorder, delivered, disconnected, timedOut *int64) error {
	s, r := oneshot.New[int]()
	rec.Record(chantrace.EventArmed, fmt.Sprintf("channel %d", i))

	done := make(chan struct{})
	go func() {
		defer close(done)
		if delay > 0 {
			time.Sleep(delay)
		}
		if err := s.Send(i); err != nil {
			rec.Record(chantrace.EventClosed, fmt.Sprintf("channel %d: receiver gone before send", i))
			return
		}
		rec.Record(chantrace.EventSent, fmt.Sprintf("channel %d", i))
	}()

	var err error
	if deadline > 0 {
		rctx, cancel := context.WithTimeout(ctx, deadline)
		_, err = r.RecvCtx(rctx)
		cancel()
	} else {
		_, err = r.Recv()
	}

	switch {
	case err == nil:
		atomic.AddInt64(delivered, 1)
		rec.Record(chantrace.EventDelivered, fmt.Sprintf("channel %d", i))
	case errors.Is(err, oneshot.ErrTimeout):
		atomic.AddInt64(timedOut, 1)
		rec.Record(chantrace.EventTimedOut, fmt.Sprintf("channel %d", i))
	default:
		atomic.AddInt64(disconnected, 1)
		rec.Errorf(chantrace.EventClosed, "channel %d: %v", i, err)
	}

	<-done
	return nil
}

func mergeProfiles(cpuPath, heapPath, outPath string) error {
	cp, err := readProfile(cpuPath)
	if err != nil {
		return fmt.Errorf("read cpu profile: %w", err)
	}
	hp, err := readProfile(heapPath)
	if err != nil {
		return fmt.Errorf("read heap profile: %w", err)
	}

	merged, err := profile.Merge([]*profile.Profile{cp, hp})
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	return merged.Write(out)
}

func readProfile(path string) (*profile.Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return profile.Parse(f)
}

func printSummary(id string, total int, delivered, disconnected, timedOut int64, elapsed time.Duration) {
	p := message.NewPrinter(language.English)
	throughput := float64(total) / elapsed.Seconds()

	colored := term.IsTerminal(int(os.Stdout.Fd()))
	format := "run %s: %d delivered, %d disconnected, %d timed out in %s (%s/s)\n"
	if colored {
		format = "\x1b[1mrun %s\x1b[0m: %d delivered, %d disconnected, %d timed out in %s (%s/s)\n"
	}
	p.Printf(format, id, delivered, disconnected, timedOut, elapsed, p.Sprintf("%.0f", throughput))
}
