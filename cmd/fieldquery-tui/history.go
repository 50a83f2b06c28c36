package main

import "time"

const (
	// Ledger size bound. Oldest entries drop off the tail once exceeded.
	maxHistoryEntries = 100
	// Display-only answer preview length; storage keeps the full answer.
	historyAnswerPreview = 300
)

// historyLedger is a prepend-ordered, bounded log of completed queries.
// Entries are immutable once appended.
type historyLedger struct {
	entries []historyEntry
}

func newHistoryEntry(question string, result queryResult) historyEntry {
	now := time.Now()
	return historyEntry{
		ID:        now.UnixMilli(),
		Question:  question,
		Result:    result,
		Timestamp: now.Format("15:04:05"),
	}
}

// append inserts at the front: most recent first, always.
func (l *historyLedger) append(entry historyEntry) {
	l.entries = append([]historyEntry{entry}, l.entries...)
	if len(l.entries) > maxHistoryEntries {
		l.entries = l.entries[:maxHistoryEntries]
	}
}

func (l *historyLedger) clear() {
	l.entries = nil
}

func (l *historyLedger) size() int {
	return len(l.entries)
}

func (l *historyLedger) at(index int) (historyEntry, bool) {
	if index < 0 || index >= len(l.entries) {
		return historyEntry{}, false
	}
	return l.entries[index], true
}

// replay hands back the stored question text, unmodified, for resubmission
// through the normal submit transition.
func (l *historyLedger) replay(index int) (string, bool) {
	entry, ok := l.at(index)
	if !ok {
		return "", false
	}
	return entry.Question, true
}
