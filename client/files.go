package client

import "sync"

// Slot names match the multipart field names the intake endpoint expects.
type Slot string

const (
	SlotAudio1         Slot = "audioFile1"
	SlotAudio2         Slot = "audioFile2"
	SlotCV             Slot = "cvFile"
	SlotRecommendation Slot = "recommendationFile"
)

// Slots lists every staging slot in submission order.
var Slots = []Slot{SlotAudio1, SlotAudio2, SlotCV, SlotRecommendation}

// StagedFile is a file selection held in memory until submit. Nothing is
// uploaded before the final submission.
type StagedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// FileStore holds one staged file per slot and notifies subscribers on
// change. Removing a file clears its slot with no other side effects.
type FileStore struct {
	mu     sync.Mutex
	slots  map[Slot]*StagedFile
	subs   map[int]func(Slot, *StagedFile)
	nextID int
}

func NewFileStore() *FileStore {
	return &FileStore{
		slots: make(map[Slot]*StagedFile, len(Slots)),
		subs:  make(map[int]func(Slot, *StagedFile)),
	}
}

func (s *FileStore) Put(slot Slot, file *StagedFile) {
	s.mu.Lock()
	s.slots[slot] = file
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(slot, file)
	}
}

func (s *FileStore) Get(slot Slot) *StagedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[slot]
}

func (s *FileStore) Remove(slot Slot) {
	s.mu.Lock()
	delete(s.slots, slot)
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(slot, nil)
	}
}

// Subscribe registers a change listener and returns an unsubscribe func. The
// listener receives the slot and its new value (nil on removal).
func (s *FileStore) Subscribe(fn func(Slot, *StagedFile)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *FileStore) snapshotSubs() []func(Slot, *StagedFile) {
	out := make([]func(Slot, *StagedFile), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}
