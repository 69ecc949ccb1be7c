package message_broker

import "fmt"

const (
	priority1 = "p1"
	priority2 = "p2"
	priority3 = "p3"

	SubmitExchange = "boc_submit"
	ResultExchange = "boc_result"
)

type Exchange struct {
	exchangeName string
	routingKeys  []string
}

type Exchanges struct {
	Exchanges []*Exchange
}

func InitExchanges() *Exchanges {
	return &Exchanges{
		Exchanges: []*Exchange{
			NewExchange(SubmitExchange, []string{priority1, priority2, priority3}),
			NewExchange(ResultExchange, []string{priority1, priority2, priority3}),
		},
	}
}

func (exs *Exchanges) GetExchange(exchange string) (Exchange, error) {
	for _, ex := range exs.Exchanges {
		if ex.exchangeName == exchange {
			return *ex, nil
		}
	}
	return Exchange{}, fmt.Errorf("exchange %q not found", exchange)
}

func NewExchange(exchangeName string, routingKeys []string) *Exchange {
	return &Exchange{
		exchangeName: exchangeName,
		routingKeys:  routingKeys,
	}
}

func (e *Exchange) Name() string {
	return e.exchangeName
}

// RoutingKey maps a priority (1..3) onto its routing key.
func (e *Exchange) RoutingKey(priority int) (string, error) {
	switch priority {
	case 1:
		return priority1, nil
	case 2:
		return priority2, nil
	case 3:
		return priority3, nil
	default:
		return "", fmt.Errorf("invalid priority %d", priority)
	}
}

// Queue returns the durable queue bound to routingKey on this exchange.
func (e *Exchange) Queue(routingKey string) string {
	return fmt.Sprintf("%s_%s", e.exchangeName, routingKey)
}

func (e *Exchange) QueueForPriority(priority int) (string, error) {
	rk, err := e.RoutingKey(priority)
	if err != nil {
		return "", err
	}
	return e.Queue(rk), nil
}
