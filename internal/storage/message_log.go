package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Jayeshkushwaha/SocketChat/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

// MessageLog — волатильный журнал сообщений на badger в in-memory режиме:
// живёт ровно столько, сколько процесс, и теряется при рестарте. Журнал
// только для чтения истории по HTTP; в WS-доставку ничего не реплеится.
type MessageLog struct {
	db    *badger.DB
	limit int
}

func OpenMessageLog(limit int) (*MessageLog, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger.Open: %w", err)
	}
	return &MessageLog{db: db, limit: limit}, nil
}

// Ключ msg:{conversation}:{ts_padded}:{id}: 19-значный unix-nano с нулями
// слева даёт хронологический лексикографический порядок, id сообщения
// размыкает коллизии в пределах наносекунды.
func key(m domain.ChatMessage) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", m.ConversationID, m.CreatedAt.UnixNano(), m.ID))
}

func (l *MessageLog) Append(m domain.ChatMessage) error {
	if m.ConversationID == "" {
		return nil // глобальный fallback-канал не журналируется
	}
	value, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(m), value)
	})
}

// History возвращает последние сообщения диалога в хронологическом порядке,
// не более сконфигурированного лимита.
func (l *MessageLog) History(conversationID string) ([]domain.ChatMessage, error) {
	prefix := []byte("msg:" + conversationID + ":")
	var raw [][]byte

	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// старт с самой свежей позиции префикса, затем назад
		seek := append(append([]byte{}, prefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if len(raw) == l.limit {
				break
			}
			if err := it.Item().Value(func(v []byte) error {
				raw = append(raw, append([]byte{}, v...))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.ChatMessage, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- { // обратно в хронологию
		var m domain.ChatMessage
		if err := json.Unmarshal(raw[i], &m); err != nil {
			slog.Warn("message log decode failed", "err", err)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (l *MessageLog) Close() error {
	return l.db.Close()
}
