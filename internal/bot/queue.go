package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// userQueue runs the updates of each user one after another in the order
// they were pushed. Different users are handled concurrently.
type userQueue struct {
	handle func(tgbotapi.Update)
	wg     *sync.WaitGroup

	mu      sync.Mutex
	pending map[int64][]tgbotapi.Update
}

func newUserQueue(wg *sync.WaitGroup, handle func(tgbotapi.Update)) *userQueue {
	return &userQueue{
		handle:  handle,
		wg:      wg,
		pending: make(map[int64][]tgbotapi.Update),
	}
}

// push enqueues update behind earlier updates of the same user and starts a
// worker for that user when none is running.
func (q *userQueue) push(update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	userID := update.Message.From.ID

	q.mu.Lock()
	defer q.mu.Unlock()
	queued, running := q.pending[userID]
	q.pending[userID] = append(queued, update)
	if !running {
		q.wg.Add(1)
		go q.drain(userID)
	}
}

// drain handles the user's updates until the queue is empty. The entry is
// removed under the lock, so a later push starts a new worker.
func (q *userQueue) drain(userID int64) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		queued := q.pending[userID]
		if len(queued) == 0 {
			delete(q.pending, userID)
			q.mu.Unlock()
			return
		}
		next := queued[0]
		q.pending[userID] = queued[1:]
		q.mu.Unlock()

		q.handle(next)
	}
}
