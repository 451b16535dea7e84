// Package posts — конвейер модерации: приём постов, подтверждение,
// решения модераторов, публикация и периодическая чистка.
package posts

import (
	"context"
	"errors"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"golang.org/x/time/rate"

	"go_submit_bot/channels"
	"go_submit_bot/config"
	"go_submit_bot/database"
	"go_submit_bot/mediagroup"
	"go_submit_bot/metrics"
)

var (
	ErrUnsupportedType = errors.New("неподдерживаемый тип поста")
	ErrNoChannel       = errors.New("канал публикации не настроен")
)

// Store — нужная конвейеру часть хранилища. Реализуется *database.DB.
type Store interface {
	CreatePost(ctx context.Context, p *database.Post) (int64, error)
	GetPost(ctx context.Context, id int64) (*database.Post, error)
	GetPostByMessage(ctx context.Context, chatID int64, msgID int) (*database.Post, error)
	GetPostByMediaGroup(ctx context.Context, groupID string) (*database.Post, error)
	PostExistsByOriginGroup(ctx context.Context, groupID string) (bool, error)

	CountPaddingSince(ctx context.Context, uid int64, since time.Time) (int, error)
	CountReviewingSince(ctx context.Context, uid int64, since time.Time) (int, error)
	CountQuotaSince(ctx context.Context, uid int64, since time.Time) (int, error)

	UpdatePostAnonymous(ctx context.Context, id int64, anonymous bool) error
	UpdatePostTags(ctx context.Context, id int64, tags int) error
	UpdatePostSpoiler(ctx context.Context, id int64, hasSpoiler bool) error
	UpdatePostStatus(ctx context.Context, id int64, status database.PostStatus) error
	UpdatePostReviewInfo(ctx context.Context, id int64, chatID int64, msgID int, actionChatID int64, actionMsgID int, groupID string, status database.PostStatus) error
	UpdatePostRejected(ctx context.Context, id int64, reason string, countReject bool, reviewerUID int64, status database.PostStatus) error
	UpdatePostAccepted(ctx context.Context, id int64, reviewerUID int64, reviewMsgID int, publicMsgID int, publishGroupID string, warnMsgID int, status database.PostStatus) error
	UpdatePostPublicRef(ctx context.Context, id int64, publicMsgID int, publishGroupID string) error
	MarkPostInPlan(ctx context.Context, id int64, reviewerUID int64) error
	UpdatePostPublished(ctx context.Context, id int64, publicMsgID int, publishGroupID string, warnMsgID int, status database.PostStatus) error

	ListExpiredPosterIDs(ctx context.Context, cutoff time.Time) ([]int64, error)
	ListStalePosts(ctx context.Context, uid int64, cutoff time.Time) ([]*database.Post, error)
	OldestPlannedPost(ctx context.Context) (*database.Post, error)

	AddAttachment(ctx context.Context, a *database.Attachment) error
	ListAttachments(ctx context.Context, postID int64) ([]*database.Attachment, error)

	GetUser(ctx context.Context, uid int64) (*database.User, error)
	IncUserPostCount(ctx context.Context, uid int64) error
	IncUserAcceptCount(ctx context.Context, uid int64) error
	IncUserRejectCount(ctx context.Context, uid int64) error
	IncUserReviewCount(ctx context.Context, uid int64) error
	AddUserExpiredCount(ctx context.Context, uid int64, n int) error
	DisableUserNotify(ctx context.Context, uid int64) error

	GetChannelSetting(ctx context.Context, channelID int64) (*database.ChannelSetting, error)
	AddMediaGroupMessages(ctx context.Context, msgs []*database.MediaGroupMessage) error
}

// TG — используемая часть Telegram-клиента. Реализуется *bot.Bot.
type TG interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	EditMessageReplyMarkup(ctx context.Context, params *bot.EditMessageReplyMarkupParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	SendAudio(ctx context.Context, params *bot.SendAudioParams) (*models.Message, error)
	SendVideo(ctx context.Context, params *bot.SendVideoParams) (*models.Message, error)
	SendVoice(ctx context.Context, params *bot.SendVoiceParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	SendAnimation(ctx context.Context, params *bot.SendAnimationParams) (*models.Message, error)
	SendMediaGroup(ctx context.Context, params *bot.SendMediaGroupParams) ([]*models.Message, error)
	ForwardMessage(ctx context.Context, params *bot.ForwardMessageParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

type Service struct {
	tg       TG
	store    Store
	cfg      *config.Config
	resolver *channels.Resolver
	groups   *mediagroup.Table
	metrics  *metrics.Collector

	// общий троттлинг исходящих отправок (флуд-лимиты Telegram)
	throttle *rate.Limiter

	now func() time.Time
}

func NewService(tg TG, store Store, cfg *config.Config, resolver *channels.Resolver, m *metrics.Collector) *Service {
	return &Service{
		tg:       tg,
		store:    store,
		cfg:      cfg,
		resolver: resolver,
		groups:   mediagroup.New(cfg.GroupWindow),
		metrics:  m,
		throttle: rate.NewLimiter(rate.Every(55*time.Millisecond), 20),
		now:      time.Now,
	}
}

// Groups — таблица склейки альбомов (для диагностики).
func (s *Service) Groups() *mediagroup.Table { return s.groups }

// reply отвечает на сообщение пользователя.
func (s *Service) reply(ctx context.Context, msg *models.Message, text string) {
	_, err := s.tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   text,
		ReplyParameters: &models.ReplyParameters{
			MessageID:                msg.ID,
			AllowSendingWithoutReply: true,
		},
	})
	if err != nil {
		s.metrics.SendError()
	}
}

// answer отвечает на callback query всплывающим текстом.
func (s *Service) answer(ctx context.Context, query *models.CallbackQuery, text string, alert bool) {
	_, _ = s.tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
		Text:            text,
		ShowAlert:       alert,
	})
}

func (s *Service) clearKeyboard(ctx context.Context, chatID int64, msgID int) {
	_, _ = s.tg.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:    chatID,
		MessageID: msgID,
	})
}

// midnight — начало текущих календарных суток в локальной зоне.
func (s *Service) midnight() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func boolPtr(b bool) *bool { return &b }

var noPreview = &models.LinkPreviewOptions{IsDisabled: boolPtr(true)}

// spoilerPtr — указатель для клавиатур: nil, если спойлер неприменим.
func spoilerPtr(p *database.Post) *bool {
	if !p.CanSpoiler() {
		return nil
	}
	return boolPtr(p.HasSpoiler)
}
