// Package metrics — счётчики Prometheus для конвейера модерации.
package metrics

import "github.com/prometheus/client_golang/prometheus"

type Collector struct {
	postsCreated     prometheus.Counter
	postsConfirmed   prometheus.Counter
	postsAccepted    prometheus.Counter
	postsRejected    prometheus.Counter
	postsExpired     prometheus.Counter
	plannedPublished prometheus.Counter
	sendErrors       prometheus.Counter
}

func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submitbot_posts_created_total",
			Help: "Созданные черновики постов.",
		}),
		postsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submitbot_posts_confirmed_total",
			Help: "Посты, подтверждённые авторами и отправленные на модерацию.",
		}),
		postsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submitbot_posts_accepted_total",
			Help: "Принятые посты.",
		}),
		postsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submitbot_posts_rejected_total",
			Help: "Отклонённые посты.",
		}),
		postsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submitbot_posts_expired_total",
			Help: "Посты, закрытые по таймауту периодической чисткой.",
		}),
		plannedPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submitbot_planned_published_total",
			Help: "Отложенные посты, опубликованные планировщиком.",
		}),
		sendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submitbot_send_errors_total",
			Help: "Ошибки отправки сообщений в Telegram.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			c.postsCreated, c.postsConfirmed, c.postsAccepted, c.postsRejected,
			c.postsExpired, c.plannedPublished, c.sendErrors,
		)
	}
	return c
}

func (c *Collector) PostCreated()       { c.postsCreated.Inc() }
func (c *Collector) PostConfirmed()     { c.postsConfirmed.Inc() }
func (c *Collector) PostAccepted()      { c.postsAccepted.Inc() }
func (c *Collector) PostRejected()      { c.postsRejected.Inc() }
func (c *Collector) PostsExpired(n int) { c.postsExpired.Add(float64(n)) }
func (c *Collector) PlannedPublished()  { c.plannedPublished.Inc() }
func (c *Collector) SendError()         { c.sendErrors.Inc() }
