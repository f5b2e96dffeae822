package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ImageLister returns the image paths still referenced by posts
type ImageLister interface {
	ListImageURLs(ctx context.Context) ([]string, error)
}

// SweepObserver is notified of how many files a sweep removed
type SweepObserver interface {
	ObserveSwept(n int)
}

// Sweeper removes image files that no post references. Uploads happen before
// the post that uses them is created, so files younger than the grace period
// are always kept.
type Sweeper struct {
	images   *Images
	lister   ImageLister
	log      *logrus.Logger
	grace    time.Duration
	observer SweepObserver
	now      func() time.Time
	cron     *cron.Cron
}

// NewSweeper creates a sweeper with the given grace period
func NewSweeper(images *Images, lister ImageLister, grace time.Duration, observer SweepObserver, log *logrus.Logger) *Sweeper {
	return &Sweeper{
		images:   images,
		lister:   lister,
		log:      log,
		grace:    grace,
		observer: observer,
		now:      time.Now,
	}
}

// Sweep runs one pass and returns the number of removed files
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	urls, err := s.lister.ListImageURLs(ctx)
	if err != nil {
		return 0, err
	}
	referenced := make(map[string]bool, len(urls))
	for _, u := range urls {
		if name, ok := s.images.fileName(u); ok {
			referenced[name] = true
		}
	}

	entries, err := os.ReadDir(s.images.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read image directory: %w", err)
	}
	cutoff := s.now().Add(-s.grace)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || referenced[e.Name()] {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := s.images.Clear(e.Name()); err != nil {
			s.log.WithError(err).Warnf("Failed to sweep %s", e.Name())
			continue
		}
		removed++
	}
	if s.observer != nil && removed > 0 {
		s.observer.ObserveSwept(removed)
	}
	return removed, nil
}

// Start schedules Sweep with a cron spec such as "@hourly"
func (s *Sweeper) Start(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		n, err := s.Sweep(context.Background())
		if err != nil {
			s.log.WithError(err).Error("Image sweep failed")
			return
		}
		s.log.Infof("Image sweep removed %d files", n)
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	s.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}
