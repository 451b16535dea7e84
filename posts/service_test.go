package posts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"go_submit_bot/channels"
	"go_submit_bot/config"
	"go_submit_bot/database"
	"go_submit_bot/metrics"
)

// fakeStore — хранилище в памяти для тестов конвейера.
type fakeStore struct {
	mu sync.Mutex

	nextPostID int64
	posts      map[int64]*database.Post
	users      map[int64]*database.User
	atts       map[int64][]*database.Attachment
	groupMsgs  []*database.MediaGroupMessage
	settings   map[int64]*database.ChannelSetting

	postCount    map[int64]int
	acceptCount  map[int64]int
	rejectCount  map[int64]int
	reviewCount  map[int64]int
	expiredCount map[int64]int
	notifyOff    map[int64]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts:        map[int64]*database.Post{},
		users:        map[int64]*database.User{},
		atts:         map[int64][]*database.Attachment{},
		settings:     map[int64]*database.ChannelSetting{},
		postCount:    map[int64]int{},
		acceptCount:  map[int64]int{},
		rejectCount:  map[int64]int{},
		reviewCount:  map[int64]int{},
		expiredCount: map[int64]int{},
		notifyOff:    map[int64]bool{},
	}
}

func (f *fakeStore) addUser(u *database.User) *database.User {
	f.users[u.UserID] = u
	return u
}

func (f *fakeStore) addPost(p *database.Post) *database.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == 0 {
		f.nextPostID++
		p.ID = f.nextPostID
	} else if p.ID > f.nextPostID {
		f.nextPostID = p.ID
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.ModifiedAt.IsZero() {
		p.ModifiedAt = p.CreatedAt
	}
	f.posts[p.ID] = p
	return p
}

func (f *fakeStore) CreatePost(ctx context.Context, p *database.Post) (int64, error) {
	cp := *p
	return f.addPost(&cp).ID, nil
}

func (f *fakeStore) GetPost(ctx context.Context, id int64) (*database.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posts[id], nil
}

func (f *fakeStore) GetPostByMessage(ctx context.Context, chatID int64, msgID int) (*database.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found *database.Post
	for _, p := range f.posts {
		match := (p.OriginChatID == chatID && p.OriginMsgID == msgID) ||
			(p.OriginActionChatID == chatID && p.OriginActionMsgID == msgID) ||
			(p.ReviewChatID == chatID && p.ReviewMsgID == msgID) ||
			(p.ReviewActionChatID == chatID && p.ReviewActionMsgID == msgID)
		if match && (found == nil || p.ID > found.ID) {
			found = p
		}
	}
	return found, nil
}

func (f *fakeStore) GetPostByMediaGroup(ctx context.Context, groupID string) (*database.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found *database.Post
	for _, p := range f.posts {
		if (p.OriginMediaGroupID == groupID || p.ReviewMediaGroupID == groupID) &&
			(found == nil || p.ID > found.ID) {
			found = p
		}
	}
	return found, nil
}

func (f *fakeStore) PostExistsByOriginGroup(ctx context.Context, groupID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.OriginMediaGroupID == groupID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) countSince(uid int64, since time.Time, match func(*database.Post) bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.posts {
		if p.PosterUID == uid && !p.CreatedAt.Before(since) && match(p) {
			n++
		}
	}
	return n
}

func (f *fakeStore) CountPaddingSince(ctx context.Context, uid int64, since time.Time) (int, error) {
	return f.countSince(uid, since, func(p *database.Post) bool {
		return p.Status == database.StatusPadding
	}), nil
}

func (f *fakeStore) CountReviewingSince(ctx context.Context, uid int64, since time.Time) (int, error) {
	return f.countSince(uid, since, func(p *database.Post) bool {
		return p.Status == database.StatusReviewing
	}), nil
}

func (f *fakeStore) CountQuotaSince(ctx context.Context, uid int64, since time.Time) (int, error) {
	return f.countSince(uid, since, func(p *database.Post) bool {
		switch p.Status {
		case database.StatusAccepted, database.StatusAcceptedSecond:
			return true
		case database.StatusRejected:
			return p.CountReject
		}
		return false
	}), nil
}

func (f *fakeStore) update(id int64, fn func(*database.Post)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return errors.New("пост не найден")
	}
	fn(p)
	p.ModifiedAt = time.Now()
	return nil
}

func (f *fakeStore) UpdatePostAnonymous(ctx context.Context, id int64, anonymous bool) error {
	return f.update(id, func(p *database.Post) { p.Anonymous = anonymous })
}

func (f *fakeStore) UpdatePostTags(ctx context.Context, id int64, tags int) error {
	return f.update(id, func(p *database.Post) { p.Tags = tags })
}

func (f *fakeStore) UpdatePostSpoiler(ctx context.Context, id int64, hasSpoiler bool) error {
	return f.update(id, func(p *database.Post) { p.HasSpoiler = hasSpoiler })
}

func (f *fakeStore) UpdatePostStatus(ctx context.Context, id int64, status database.PostStatus) error {
	return f.update(id, func(p *database.Post) { p.Status = status })
}

func (f *fakeStore) UpdatePostReviewInfo(ctx context.Context, id int64, chatID int64, msgID int, actionChatID int64, actionMsgID int, groupID string, status database.PostStatus) error {
	return f.update(id, func(p *database.Post) {
		p.ReviewChatID, p.ReviewMsgID = chatID, msgID
		p.ReviewActionChatID, p.ReviewActionMsgID = actionChatID, actionMsgID
		p.ReviewMediaGroupID = groupID
		p.Status = status
	})
}

func (f *fakeStore) UpdatePostRejected(ctx context.Context, id int64, reason string, countReject bool, reviewerUID int64, status database.PostStatus) error {
	return f.update(id, func(p *database.Post) {
		p.RejectReason, p.CountReject = reason, countReject
		p.ReviewerUID = reviewerUID
		p.Status = status
	})
}

func (f *fakeStore) UpdatePostAccepted(ctx context.Context, id int64, reviewerUID int64, reviewMsgID int, publicMsgID int, publishGroupID string, warnMsgID int, status database.PostStatus) error {
	return f.update(id, func(p *database.Post) {
		p.ReviewerUID = reviewerUID
		p.ReviewMsgID = reviewMsgID
		p.PublicMsgID, p.PublishMediaGroupID, p.WarnTextID = publicMsgID, publishGroupID, warnMsgID
		p.Status = status
	})
}

func (f *fakeStore) UpdatePostPublicRef(ctx context.Context, id int64, publicMsgID int, publishGroupID string) error {
	return f.update(id, func(p *database.Post) {
		p.PublicMsgID, p.PublishMediaGroupID = publicMsgID, publishGroupID
	})
}

func (f *fakeStore) MarkPostInPlan(ctx context.Context, id int64, reviewerUID int64) error {
	return f.update(id, func(p *database.Post) {
		p.ReviewerUID = reviewerUID
		p.Status = database.StatusInPlan
	})
}

func (f *fakeStore) UpdatePostPublished(ctx context.Context, id int64, publicMsgID int, publishGroupID string, warnMsgID int, status database.PostStatus) error {
	return f.update(id, func(p *database.Post) {
		p.PublicMsgID, p.PublishMediaGroupID, p.WarnTextID = publicMsgID, publishGroupID, warnMsgID
		p.Status = status
	})
}

func (f *fakeStore) ListExpiredPosterIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[int64]bool{}
	var ids []int64
	for _, p := range f.posts {
		stale := (p.Status == database.StatusPadding || p.Status == database.StatusReviewing) &&
			p.ModifiedAt.Before(cutoff)
		if stale && !seen[p.PosterUID] {
			seen[p.PosterUID] = true
			ids = append(ids, p.PosterUID)
		}
	}
	return ids, nil
}

func (f *fakeStore) ListStalePosts(ctx context.Context, uid int64, cutoff time.Time) ([]*database.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*database.Post
	for _, p := range f.posts {
		if p.PosterUID != uid {
			continue
		}
		if (p.Status == database.StatusPadding || p.Status == database.StatusReviewing) &&
			p.ModifiedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) OldestPlannedPost(ctx context.Context) (*database.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found *database.Post
	for _, p := range f.posts {
		if p.Status == database.StatusInPlan && (found == nil || p.ID < found.ID) {
			found = p
		}
	}
	return found, nil
}

func (f *fakeStore) AddAttachment(ctx context.Context, a *database.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.atts[a.PostID] = append(f.atts[a.PostID], a)
	return nil
}

func (f *fakeStore) ListAttachments(ctx context.Context, postID int64) ([]*database.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.atts[postID], nil
}

func (f *fakeStore) GetUser(ctx context.Context, uid int64) (*database.User, error) {
	return f.users[uid], nil
}

func (f *fakeStore) IncUserPostCount(ctx context.Context, uid int64) error {
	f.postCount[uid]++
	return nil
}

func (f *fakeStore) IncUserAcceptCount(ctx context.Context, uid int64) error {
	f.acceptCount[uid]++
	return nil
}

func (f *fakeStore) IncUserRejectCount(ctx context.Context, uid int64) error {
	f.rejectCount[uid]++
	return nil
}

func (f *fakeStore) IncUserReviewCount(ctx context.Context, uid int64) error {
	f.reviewCount[uid]++
	return nil
}

func (f *fakeStore) AddUserExpiredCount(ctx context.Context, uid int64, n int) error {
	f.expiredCount[uid] += n
	return nil
}

func (f *fakeStore) DisableUserNotify(ctx context.Context, uid int64) error {
	f.notifyOff[uid] = true
	if u, ok := f.users[uid]; ok {
		u.PrivateChatID = 0
	}
	return nil
}

func (f *fakeStore) GetChannelSetting(ctx context.Context, channelID int64) (*database.ChannelSetting, error) {
	return f.settings[channelID], nil
}

func (f *fakeStore) UpsertChannelSetting(ctx context.Context, channelID int64, title string) (*database.ChannelSetting, error) {
	if cs, ok := f.settings[channelID]; ok {
		cs.HitCount++
		return cs, nil
	}
	cs := &database.ChannelSetting{ChannelID: channelID, Title: title, Option: database.ChannelNormal}
	f.settings[channelID] = cs
	return cs, nil
}

func (f *fakeStore) AddMediaGroupMessages(ctx context.Context, msgs []*database.MediaGroupMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groupMsgs = append(f.groupMsgs, msgs...)
	return nil
}

// fakeTG записывает исходящие вызовы Telegram.
type tgCall struct {
	method string
	chatID int64
	text   string
}

type fakeTG struct {
	mu     sync.Mutex
	nextID int
	calls  []tgCall

	failAll bool // все отправки падают
}

func chatToInt(v any) int64 {
	switch id := v.(type) {
	case int64:
		return id
	case int:
		return int64(id)
	}
	return 0
}

func (f *fakeTG) record(method string, chatID any, text string) *models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := chatToInt(chatID)
	f.calls = append(f.calls, tgCall{method: method, chatID: id, text: text})
	return &models.Message{ID: f.nextID, Chat: models.Chat{ID: id}}
}

func (f *fakeTG) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

func (f *fakeTG) last(method string) *tgCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].method == method {
			return &f.calls[i]
		}
	}
	return nil
}

var errFakeSend = errors.New("фейковый сбой отправки")

func (f *fakeTG) SendMessage(ctx context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	if f.failAll {
		return nil, errFakeSend
	}
	return f.record("SendMessage", p.ChatID, p.Text), nil
}

func (f *fakeTG) EditMessageText(ctx context.Context, p *bot.EditMessageTextParams) (*models.Message, error) {
	if f.failAll {
		return nil, errFakeSend
	}
	return f.record("EditMessageText", p.ChatID, p.Text), nil
}

func (f *fakeTG) EditMessageReplyMarkup(ctx context.Context, p *bot.EditMessageReplyMarkupParams) (*models.Message, error) {
	if f.failAll {
		return nil, errFakeSend
	}
	return f.record("EditMessageReplyMarkup", p.ChatID, ""), nil
}

func (f *fakeTG) SendPhoto(ctx context.Context, p *bot.SendPhotoParams) (*models.Message, error) {
	if f.failAll {
		return nil, errFakeSend
	}
	return f.record("SendPhoto", p.ChatID, p.Caption), nil
}

func (f *fakeTG) SendAudio(ctx context.Context, p *bot.SendAudioParams) (*models.Message, error) {
	if f.failAll {
		return nil, errFakeSend
	}
	return f.record("SendAudio", p.ChatID, p.Caption), nil
}

func (f *fakeTG) SendVideo(ctx context.Context, p *bot.SendVideoParams) (*models.Message, error) {
	if f.failAll {
		return nil, errFakeSend
	}
	return f.record("SendVideo", p.ChatID, p.Caption), nil
}

func (f *fakeTG) SendVoice(ctx context.Context, p *bot.SendVoiceParams) (*models.Message, error) {
	if f.failAll {
		return nil, errFakeSend
	}
	return f.record("SendVoice", p.ChatID, p.Caption), nil
}

func (f *fakeTG) SendDocument(ctx context.Context, p *bot.SendDocumentParams) (*models.Message, error) {
	if f.failAll {
		return nil, errFakeSend
	}
	return f.record("SendDocument", p.ChatID, p.Caption), nil
}

func (f *fakeTG) SendAnimation(ctx context.Context, p *bot.SendAnimationParams) (*models.Message, error) {
	if f.failAll {
		return nil, errFakeSend
	}
	return f.record("SendAnimation", p.ChatID, p.Caption), nil
}

func (f *fakeTG) SendMediaGroup(ctx context.Context, p *bot.SendMediaGroupParams) ([]*models.Message, error) {
	if f.failAll {
		return nil, errFakeSend
	}
	f.mu.Lock()
	groupID := fmt.Sprintf("sent-group-%d", f.nextID+1)
	f.mu.Unlock()

	out := make([]*models.Message, 0, len(p.Media))
	for range p.Media {
		m := f.record("SendMediaGroup", p.ChatID, "")
		m.MediaGroupID = groupID
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeTG) ForwardMessage(ctx context.Context, p *bot.ForwardMessageParams) (*models.Message, error) {
	if f.failAll {
		return nil, errFakeSend
	}
	return f.record("ForwardMessage", p.ChatID, ""), nil
}

func (f *fakeTG) AnswerCallbackQuery(ctx context.Context, p *bot.AnswerCallbackQueryParams) (bool, error) {
	f.record("AnswerCallbackQuery", int64(0), p.Text)
	return true, nil
}

func (f *fakeTG) SendChatAction(ctx context.Context, p *bot.SendChatActionParams) (bool, error) {
	f.record("SendChatAction", p.ChatID, "")
	return true, nil
}

func testConfig() *config.Config {
	return &config.Config{
		ReviewGroupID:   -100200,
		AcceptChannelID: -1001000000001,
		SecondChannelID: -1001000000002,

		EnablePostLimit:   true,
		DailyPaddingLimit: 3,
		DailyReviewLimit:  2,
		DailyPostLimit:    5,
		RatioDivisor:      10,
		MaxRatio:          5,
		MaxPostText:       2000,

		GroupWindow:     30 * time.Millisecond,
		PostExpiredDays: 3,
	}
}

func newTestService(store *fakeStore, tg *fakeTG, cfg *config.Config) *Service {
	if cfg == nil {
		cfg = testConfig()
	}
	return NewService(tg, store, cfg, channels.NewResolver(store), metrics.New(nil))
}

func testUser(uid int64, rights database.UserRights) *database.User {
	return &database.User{
		UserID:        uid,
		FirstName:     "Тест",
		Rights:        rights,
		Notification:  true,
		PrivateChatID: uid,
	}
}

func privateMessage(chatID int64, msgID int, text string) *models.Message {
	return &models.Message{
		ID:   msgID,
		Chat: models.Chat{ID: chatID, Type: models.ChatTypePrivate},
		Text: text,
	}
}

func callbackOn(msg *models.Message) *models.CallbackQuery {
	return &models.CallbackQuery{
		ID:      "q1",
		Message: models.MaybeInaccessibleMessage{Message: msg},
	}
}
