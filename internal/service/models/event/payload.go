package event

import (
	"fmt"
	"strconv"
)

// Payload is a provider-agnostic push notification body. Data carries
// structured metadata the client uses for deep linking.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Icon  string            `json:"icon,omitempty"`
	Data  map[string]string `json:"data"`
}

// BuildPayload assembles the push payload for a job. The switch over Kind
// is exhaustive: an unhandled kind is an error, not a silent empty payload.
func BuildPayload(j Job) (Payload, error) {
	switch j.Kind {
	case KindOrderConfirmed:
		body := "Your order has been confirmed."
		if j.DeliveryTime != nil {
			body = fmt.Sprintf("Your order has been confirmed. Ready in about %d minutes.", *j.DeliveryTime)
		}

		return Payload{
			Title: "Order confirmed",
			Body:  body,
			Icon:  "order_confirmed",
			Data:  orderData(j, "order_confirmed"),
		}, nil

	case KindOrderRejected:
		body := "Your order has been rejected."
		if j.RejectionReason != nil && *j.RejectionReason != "" {
			body = "Your order has been rejected: " + *j.RejectionReason
		}

		return Payload{
			Title: "Order rejected",
			Body:  body,
			Icon:  "order_rejected",
			Data:  orderData(j, "order_rejected"),
		}, nil

	case KindOrderCompleted:
		return Payload{
			Title: "Order completed",
			Body:  "Your order is complete. Enjoy!",
			Icon:  "order_completed",
			Data:  orderData(j, "order_completed"),
		}, nil

	case KindOrderReceived:
		return Payload{
			Title: "Order received",
			Body:  "The customer has received the order.",
			Icon:  "order_received",
			Data:  orderData(j, "order_received"),
		}, nil

	case KindOrderCancelled:
		return Payload{
			Title: "Order cancelled",
			Body:  "The customer has cancelled the order.",
			Icon:  "order_cancelled",
			Data:  orderData(j, "order_cancelled"),
		}, nil

	case KindAdvertisement:
		return Payload{
			Title: "New promotion",
			Body:  j.Message,
			Icon:  "advertisement",
			Data: map[string]string{
				"type":            "advertisement",
				"advertisementId": strconv.FormatInt(j.AdvertisementID, 10),
				"shopId":          strconv.FormatInt(j.ShopID, 10),
				"deepLink":        fmt.Sprintf("/shops/%d/advertisements/%d", j.ShopID, j.AdvertisementID),
			},
		}, nil

	default:
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownKind, j.Kind)
	}
}

func orderData(j Job, typ string) map[string]string {
	data := map[string]string{
		"type":     typ,
		"orderId":  strconv.FormatInt(j.OrderID, 10),
		"shopId":   strconv.FormatInt(j.ShopID, 10),
		"deepLink": fmt.Sprintf("/orders/%d", j.OrderID),
	}
	if j.DeliveryTime != nil {
		data["deliveryTimeMinutes"] = strconv.Itoa(*j.DeliveryTime)
	}
	if j.RejectionReason != nil && *j.RejectionReason != "" {
		data["rejectionReason"] = *j.RejectionReason
	}

	return data
}
