package database

import "time"

// PostStatus — статус поста в конвейере модерации
type PostStatus int

const (
	StatusCancel         PostStatus = -3 // отменён автором
	StatusConfirmTimeout PostStatus = -2 // истёк срок подтверждения
	StatusReviewTimeout  PostStatus = -1 // истёк срок модерации
	StatusPadding        PostStatus = 1  // ждёт подтверждения автора
	StatusReviewing      PostStatus = 2  // ждёт решения модератора
	StatusRejected       PostStatus = 3
	StatusAccepted       PostStatus = 4
	StatusAcceptedSecond PostStatus = 5 // опубликован во второй канал
	StatusInPlan         PostStatus = 6 // отложенная публикация
)

// Terminal сообщает, является ли статус конечным.
// InPlan не конечный: разрешается в Accepted при плановой публикации.
func (s PostStatus) Terminal() bool {
	switch s {
	case StatusCancel, StatusConfirmTimeout, StatusReviewTimeout,
		StatusRejected, StatusAccepted, StatusAcceptedSecond:
		return true
	}
	return false
}

func (s PostStatus) String() string {
	switch s {
	case StatusCancel:
		return "cancel"
	case StatusConfirmTimeout:
		return "confirm_timeout"
	case StatusReviewTimeout:
		return "review_timeout"
	case StatusPadding:
		return "padding"
	case StatusReviewing:
		return "reviewing"
	case StatusRejected:
		return "rejected"
	case StatusAccepted:
		return "accepted"
	case StatusAcceptedSecond:
		return "accepted_second"
	case StatusInPlan:
		return "in_plan"
	}
	return "unknown"
}

// PostType — тип содержимого поста
type PostType string

const (
	TypeText      PostType = "text"
	TypePhoto     PostType = "photo"
	TypeVideo     PostType = "video"
	TypeAudio     PostType = "audio"
	TypeVoice     PostType = "voice"
	TypeDocument  PostType = "document"
	TypeAnimation PostType = "animation"
	TypeUnknown   PostType = "unknown"
)

// UserRights — битовая маска прав пользователя
type UserRights int64

const (
	RightSendPost   UserRights = 1 << 0
	RightReviewPost UserRights = 1 << 1
	RightDirectPost UserRights = 1 << 2
	RightAdmin      UserRights = 1 << 3
)

func (r UserRights) Has(f UserRights) bool { return r&f != 0 }

type Post struct {
	ID        int64
	PosterUID int64

	// Сообщения в чате автора: сам пост и сообщение с кнопками
	OriginChatID       int64
	OriginMsgID        int
	OriginActionChatID int64
	OriginActionMsgID  int

	// Сообщения в группе модерации
	ReviewChatID       int64
	ReviewMsgID        int
	ReviewActionChatID int64
	ReviewActionMsgID  int

	OriginMediaGroupID string
	ReviewMediaGroupID string

	// Источник, если пост переслан из канала
	ChannelID    int64
	ChannelMsgID int

	Status     PostStatus
	PostType   PostType
	Text       string
	RawText    string
	Anonymous  bool
	HasSpoiler bool
	Tags       int

	ReviewerUID  int64
	RejectReason string
	CountReject  bool

	PublicMsgID         int
	PublishMediaGroupID string
	WarnTextID          int

	CreatedAt  time.Time
	ModifiedAt time.Time
}

func (p *Post) IsMediaGroup() bool { return p.OriginMediaGroupID != "" }

func (p *Post) IsFromChannel() bool { return p.ChannelID != 0 }

/// IsDirectPost — пост создан с правом прямой публикации: поля модерации
// зеркалируют исходные.
func (p *Post) IsDirectPost() bool {
	return p.ReviewMsgID != 0 && p.ReviewChatID == p.OriginChatID && p.ReviewMsgID == p.OriginMsgID
}

// CanSpoiler — тип поддерживает скрытие спойлером
func (p *Post) CanSpoiler() bool {
	switch p.PostType {
	case TypePhoto, TypeVideo, TypeAnimation:
		return true
	}
	return false
}

type User struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string

	Rights          UserRights
	IsBan           bool
	PreferAnonymous bool
	Notification    bool
	PrivateChatID   int64

	AcceptCount      int
	RejectCount      int
	PostCount        int
	ReviewCount      int
	ExpiredPostCount int

	CreatedAt  time.Time
	ModifiedAt time.Time
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Attachment struct {
	ID        int64
	PostID    int64
	FileID    string
	FileName  string
	FileSize  int64
	Type      PostType
	CreatedAt time.Time
}

// MediaGroupMessage — связь media_group_id с отправленными сообщениями
type MediaGroupMessage struct {
	ID           int64
	MediaGroupID string
	ChatID       int64
	MessageID    int
	CreatedAt    time.Time
}

// ChannelOption — политика приёма постов, пересланных из канала
type ChannelOption int

const (
	ChannelNormal      ChannelOption = 0 // принимать как обычно
	ChannelPurgeOrigin ChannelOption = 1 // скрывать источник
	ChannelAutoReject  ChannelOption = 2 // отклонять автоматически
)

type ChannelSetting struct {
	ID         int64
	ChannelID  int64
	Title      string
	Option     ChannelOption
	HitCount   int
	CreatedAt  time.Time
	ModifiedAt time.Time
}
