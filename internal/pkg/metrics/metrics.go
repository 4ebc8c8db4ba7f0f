package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// 发帖结果
const (
	OutcomeSuccess = "success"
)

// 补偿删除结果
const (
	CompensationDeleted = "deleted"
	CompensationFailed  = "failed"
)

// PublishMetrics 发帖写路径的计数器，nil 接收者上调用为空操作
type PublishMetrics struct {
	publishTotal      *prometheus.CounterVec
	compensationTotal *prometheus.CounterVec
}

func NewPublishMetrics(reg prometheus.Registerer) (*PublishMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	publishTotal, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bulletin",
		Name:      "post_publish_total",
		Help:      "Post create/update calls by outcome.",
	}, []string{"op", "outcome"}))
	if err != nil {
		return nil, err
	}
	compensationTotal, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bulletin",
		Name:      "asset_compensation_total",
		Help:      "Compensating asset deletes by result.",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}
	return &PublishMetrics{
		publishTotal:      publishTotal,
		compensationTotal: compensationTotal,
	}, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register counter: %w", err)
	}
	return c, nil
}

// ObservePublish 记录一次 create/update 的结果，outcome 为 success 或错误类型
func (m *PublishMetrics) ObservePublish(op, outcome string) {
	if m == nil {
		return
	}
	m.publishTotal.WithLabelValues(op, outcome).Inc()
}

func (m *PublishMetrics) ObserveCompensation(result string) {
	if m == nil {
		return
	}
	m.compensationTotal.WithLabelValues(result).Inc()
}
