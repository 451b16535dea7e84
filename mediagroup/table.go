// Package mediagroup — временная таблица склейки альбомов: сообщения с общим
// media_group_id собираются в один пост в пределах окна ожидания.
//
// Таблица живёт только в памяти процесса и стартует пустой; защита от
// повторной доставки после рестарта лежит на проверке сохранённого
// media_group_id в базе на стороне вызывающего кода.
package mediagroup

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type Table struct {
	window  time.Duration
	entries *xsync.MapOf[string, *Entry]
}

// Entry — заявка на ключ группы. Создатель записывает id поста и закрывает
// ready; остальные сообщения группы ждут ready и дописывают вложения.
type Entry struct {
	ready  chan struct{}
	postID int64
	timer  *time.Timer
}

func New(window time.Duration) *Table {
	return &Table{
		window:  window,
		entries: xsync.NewMapOf[string, *Entry](),
	}
}

func (t *Table) Window() time.Duration { return t.window }

// Claim атомарно захватывает ключ. Возвращает true, если вызывающий стал
// создателем и обязан затем вызвать Commit или Abort.
func (t *Table) Claim(key string) (*Entry, bool) {
	e, loaded := t.entries.LoadOrStore(key, &Entry{ready: make(chan struct{})})
	return e, !loaded
}

// Commit фиксирует id поста за ключом, отпускает ожидающих и взводит таймер
// окна. По истечении окна ключ вытесняется и вызывается finalize.
func (t *Table) Commit(key string, postID int64, finalize func()) {
	e, ok := t.entries.Load(key)
	if !ok {
		return
	}
	e.postID = postID
	close(e.ready)
	e.timer = time.AfterFunc(t.window, func() {
		t.entries.Delete(key)
		if finalize != nil {
			finalize()
		}
	})
}

// Abort снимает заявку: таймер гасится, ожидающие получают 0.
// Вызывается создателем вместо Commit, если пост создать не удалось.
func (t *Table) Abort(key string) {
	e, ok := t.entries.LoadAndDelete(key)
	if !ok {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	select {
	case <-e.ready:
	default:
		close(e.ready)
	}
}

// Len — число активных ключей.
func (t *Table) Len() int { return t.entries.Size() }

// Resolve ждёт id поста. 0 означает, что заявка снята; сообщение следует
// считать началом новой группы или отбросить.
func (e *Entry) Resolve(ctx context.Context) (int64, error) {
	select {
	case <-e.ready:
		return e.postID, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
