package server

import (
	"context"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/slog"

	"blackjackd/pkg/blackjack"
)

// turnJob carries a session id whose AI and dealer turns are due.
type turnJob struct {
	sessionID string
}

// TurnScheduler advances AI and dealer turns in the background after a
// handler leaves a session in AI_TURN or DEALER_TURN. Each sub-phase
// re-fetches the session from the store instead of reusing the handler's
// object, so a session that was reset or replaced in the meantime is left
// alone.
type TurnScheduler struct {
	server   *Server
	log      slog.Logger
	delay    time.Duration
	queue    chan turnJob
	workers  []*turnWorker
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

// turnWorker processes jobs from the queue
type turnWorker struct {
	id        int
	scheduler *TurnScheduler
	stopChan  chan struct{}
	wg        *sync.WaitGroup
}

// newTurnScheduler creates a new turn scheduler
func newTurnScheduler(server *Server, log slog.Logger, queueSize, workerCount int, delay time.Duration) *TurnScheduler {
	scheduler := &TurnScheduler{
		server:   server,
		log:      log,
		delay:    delay,
		queue:    make(chan turnJob, queueSize),
		stopChan: make(chan struct{}),
	}

	// Create workers
	scheduler.workers = make([]*turnWorker, workerCount)
	for i := 0; i < workerCount; i++ {
		scheduler.workers[i] = &turnWorker{
			id:        i,
			scheduler: scheduler,
			stopChan:  make(chan struct{}),
			wg:        &scheduler.wg,
		}
	}

	return scheduler
}

// Start begins processing turn jobs
func (ts *TurnScheduler) Start() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.started {
		return
	}

	ts.started = true
	ts.log.Infof("Starting turn scheduler with %d workers", len(ts.workers))

	for _, worker := range ts.workers {
		ts.wg.Add(1)
		go worker.run()
	}
}

// Stop gracefully stops the scheduler, abandoning any pacing delay in
// progress.
func (ts *TurnScheduler) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.started {
		return
	}

	ts.log.Infof("Stopping turn scheduler...")

	close(ts.stopChan)
	for _, worker := range ts.workers {
		close(worker.stopChan)
	}

	ts.wg.Wait()

	ts.started = false
	ts.log.Infof("Turn scheduler stopped")
}

// Schedule queues the session's AI and dealer turns. Never blocks: when the
// queue is full the job is dropped and the turns stay pending until the
// client reconnects and acts again.
func (ts *TurnScheduler) Schedule(sessionID string) {
	ts.mu.Lock()
	started := ts.started
	ts.mu.Unlock()

	if !started {
		ts.log.Warnf("Turn scheduler not started, dropping job for %s", sessionID)
		return
	}

	select {
	case ts.queue <- turnJob{sessionID: sessionID}:
		ts.log.Debugf("Scheduled turns for session %s", sessionID)
	default:
		ts.log.Errorf("Turn queue full, dropping job for session %s", sessionID)
	}
}

// run executes the worker loop
func (w *turnWorker) run() {
	defer w.wg.Done()
	w.scheduler.log.Debugf("Turn worker %d started", w.id)

	for {
		select {
		case <-w.stopChan:
			w.scheduler.log.Debugf("Turn worker %d stopping", w.id)
			return

		case <-w.scheduler.stopChan:
			w.scheduler.log.Debugf("Turn worker %d stopping (scheduler shutdown)", w.id)
			return

		case job := <-w.scheduler.queue:
			w.playTurns(job.sessionID)
		}
	}
}

// pause waits out the pacing delay. Returns false when the scheduler is
// shutting down.
func (w *turnWorker) pause() bool {
	select {
	case <-time.After(w.scheduler.delay):
		return true
	case <-w.stopChan:
		return false
	case <-w.scheduler.stopChan:
		return false
	}
}

// playTurns advances the AI seat and then the dealer. Each leg re-fetches
// the session and is skipped without effect when the phase no longer
// matches, so a concurrent reset or restart wins over a stale job.
func (w *turnWorker) playTurns(sessionID string) {
	ctx := context.Background()
	s := w.scheduler.server
	log := w.scheduler.log

	// AI seat
	sess, version, err := s.loadSession(ctx, sessionID)
	if err != nil {
		log.Warnf("Skipping turns for %s: %v", sessionID, err)
		return
	}
	if sess.Phase == blackjack.AITurn {
		if !w.pause() {
			return
		}
		if err := sess.PlayAITurn(); err != nil {
			log.Warnf("AI turn error for %s: %v", sessionID, err)
			s.publish(sessionID, eventError, messagePayload{Message: err.Error()})
			return
		}
		if err := s.saveSession(ctx, sess, version); err != nil {
			log.Warnf("Dropping AI turn result for %s: %v", sessionID, err)
			return
		}
		s.publish(sessionID, eventGameStateUpdate, collectGameState(sess))
	} else {
		w.skip("AI", sessionID, sess)
	}

	// Dealer seat; the fresh fetch picks up whatever state the AI leg or a
	// concurrent writer left behind.
	sess, version, err = s.loadSession(ctx, sessionID)
	if err != nil {
		log.Warnf("Skipping dealer turn for %s: %v", sessionID, err)
		return
	}
	if sess.Phase != blackjack.DealerTurn {
		w.skip("dealer", sessionID, sess)
		return
	}
	if !w.pause() {
		return
	}
	if err := sess.PlayDealerTurn(); err != nil {
		log.Warnf("Dealer turn error for %s: %v", sessionID, err)
		s.publish(sessionID, eventError, messagePayload{Message: err.Error()})
		return
	}
	if err := s.saveSession(ctx, sess, version); err != nil {
		log.Warnf("Dropping dealer turn result for %s: %v", sessionID, err)
		return
	}

	// The round is settled; this projection reveals the dealer's hand.
	s.publish(sessionID, eventGameStateUpdate, collectGameState(sess))

	if err := s.accounts.SetBalance(defaultAccount, sess.Player.Balance, "round settled"); err != nil {
		log.Errorf("Failed to persist balance for %s: %v", sessionID, err)
	}

	if sess.Phase == blackjack.GameOver {
		s.publish(sessionID, eventGameOver, messagePayload{Message: gameOverMessage})
		log.Infof("Game over for %s, player out of money", sessionID)
	}
}

// skip records a sub-phase that no longer applies. The full session dump
// only renders at trace level.
func (w *turnWorker) skip(seat, sessionID string, sess *blackjack.Session) {
	w.scheduler.log.Debugf("Skipping %s turn for %s, phase is %s", seat, sessionID, sess.Phase)
	w.scheduler.log.Tracef("Session %s at skip: %s", sessionID, spew.Sdump(sess))
}
