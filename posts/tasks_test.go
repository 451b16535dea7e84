package posts

import (
	"context"
	"testing"
	"time"

	"go_submit_bot/database"
)

func stalePost(store *fakeStore, uid int64, status database.PostStatus, age time.Duration) *database.Post {
	return store.addPost(&database.Post{
		PosterUID:          uid,
		OriginChatID:       uid,
		OriginMsgID:        100,
		OriginActionChatID: uid,
		OriginActionMsgID:  101,
		ReviewActionChatID: reviewGroup,
		ReviewActionMsgID:  501,
		Status:             status,
		PostType:           database.TypeText,
		Text:               "завис",
		CreatedAt:          time.Now().Add(-age),
	})
}

// Чистка закрывает посты старше порога и не трогает свежие.
// В личный счёт просроченных идут только посты, не дождавшиеся модерации.
func TestCleanExpiredPosts(t *testing.T) {
	store := newFakeStore()
	tg := &fakeTG{}
	s := newTestService(store, tg, nil)

	store.addUser(testUser(10, database.RightSendPost))
	oldPadding := stalePost(store, 10, database.StatusPadding, 4*24*time.Hour)
	oldReviewing := stalePost(store, 10, database.StatusReviewing, 4*24*time.Hour)
	fresh := stalePost(store, 10, database.StatusPadding, 2*24*time.Hour)

	if err := s.CleanExpiredPosts(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := store.posts[oldPadding.ID].Status; got != database.StatusConfirmTimeout {
		t.Errorf("старый черновик: статус %v, ожидался confirm_timeout", got)
	}
	if got := store.posts[oldReviewing.ID].Status; got != database.StatusReviewTimeout {
		t.Errorf("старый пост на модерации: статус %v, ожидался review_timeout", got)
	}
	if got := store.posts[fresh.ID].Status; got != database.StatusPadding {
		t.Errorf("свежий пост изменён: %v", got)
	}
	if store.expiredCount[10] != 1 {
		t.Errorf("счётчик просроченных %d, ожидался 1", store.expiredCount[10])
	}
	if tg.count("SendMessage") != 1 {
		t.Errorf("сводок автору: %d, ожидалась 1", tg.count("SendMessage"))
	}
}

// Нулевой порог выключает чистку.
func TestCleanExpiredPostsDisabled(t *testing.T) {
	store := newFakeStore()
	cfg := testConfig()
	cfg.PostExpiredDays = 0
	s := newTestService(store, &fakeTG{}, cfg)

	store.addUser(testUser(10, database.RightSendPost))
	p := stalePost(store, 10, database.StatusPadding, 30*24*time.Hour)

	if err := s.CleanExpiredPosts(context.Background()); err != nil {
		t.Fatal(err)
	}
	if store.posts[p.ID].Status != database.StatusPadding {
		t.Error("чистка сработала при нулевом пороге")
	}
}

// Недоставленная сводка выключает уведомления автора.
func TestCleanExpiredPostsNotifyFailure(t *testing.T) {
	store := newFakeStore()
	tg := &fakeTG{failAll: true}
	s := newTestService(store, tg, nil)

	store.addUser(testUser(10, database.RightSendPost))
	stalePost(store, 10, database.StatusPadding, 4*24*time.Hour)

	if err := s.CleanExpiredPosts(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !store.notifyOff[10] {
		t.Error("уведомления не выключены после сбоя доставки")
	}
}

// Заблокированный автор не получает сводку о зависших постах.
func TestCleanExpiredPostsBannedAuthor(t *testing.T) {
	store := newFakeStore()
	tg := &fakeTG{}
	s := newTestService(store, tg, nil)

	user := store.addUser(testUser(10, database.RightSendPost))
	user.IsBan = true
	p := stalePost(store, 10, database.StatusPadding, 4*24*time.Hour)

	if err := s.CleanExpiredPosts(context.Background()); err != nil {
		t.Fatal(err)
	}
	if store.posts[p.ID].Status != database.StatusConfirmTimeout {
		t.Error("зависший пост заблокированного автора не закрыт")
	}
	if tg.count("SendMessage") != 0 {
		t.Error("заблокированному автору отправлена сводка")
	}
}

// Планировщик публикует самый старый отложенный пост, не больше одного
// за проход.
func TestPublishPlannedPost(t *testing.T) {
	store := newFakeStore()
	tg := &fakeTG{}
	s := newTestService(store, tg, nil)

	store.addUser(testUser(10, database.RightSendPost))
	first := reviewingPost(store, 10)
	first.Status = database.StatusInPlan
	second := reviewingPost(store, 10)
	second.Status = database.StatusInPlan

	if err := s.PublishPlannedPost(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := store.posts[first.ID].Status; got != database.StatusAccepted {
		t.Errorf("первый пост: статус %v, ожидался accepted", got)
	}
	if got := store.posts[second.ID].Status; got != database.StatusInPlan {
		t.Errorf("второй пост опубликован в том же проходе: %v", got)
	}
	if store.posts[first.ID].PublicMsgID == 0 {
		t.Error("не записано опубликованное сообщение")
	}
	if store.acceptCount[10] != 1 {
		t.Errorf("счётчик принятых %d, ожидался 1", store.acceptCount[10])
	}
}

// Сбой публикации оставляет пост отложенным для повтора на следующем
// проходе.
func TestPublishPlannedPostFailure(t *testing.T) {
	store := newFakeStore()
	tg := &fakeTG{failAll: true}
	s := newTestService(store, tg, nil)

	store.addUser(testUser(10, database.RightSendPost))
	p := reviewingPost(store, 10)
	p.Status = database.StatusInPlan

	if err := s.PublishPlannedPost(context.Background()); err == nil {
		t.Fatal("ожидалась ошибка публикации")
	}
	if store.posts[p.ID].Status != database.StatusInPlan {
		t.Error("пост потерял статус плана после сбоя")
	}
	if store.acceptCount[10] != 0 {
		t.Error("счётчик принятых увеличен при сбое")
	}
}

// Пустой план — не ошибка.
func TestPublishPlannedPostEmpty(t *testing.T) {
	s := newTestService(newFakeStore(), &fakeTG{}, nil)
	if err := s.PublishPlannedPost(context.Background()); err != nil {
		t.Fatal(err)
	}
}
