package clip

// flatPayload is one payload tagged with the index of the item it belongs
// to. The native pasteboard bridge exchanges payloads in this shape.
type flatPayload struct {
	Item int
	Payload
}

// flatten lists every payload of items in order.
func flatten(items []Item) []flatPayload {
	var out []flatPayload
	for i, it := range items {
		for _, p := range it.Payloads {
			out = append(out, flatPayload{Item: i, Payload: p})
		}
	}
	return out
}

// regroup rebuilds nitems items from flat, keeping payload order within
// each item. Items the platform listed without any readable payload stay
// as empty slots. Returns nil when there is no payload at all, and ignores
// payloads that point outside nitems.
func regroup(nitems int, flat []flatPayload) []Item {
	if len(flat) == 0 || nitems <= 0 {
		return nil
	}
	items := make([]Item, nitems)
	for _, p := range flat {
		if p.Item < 0 || p.Item >= nitems {
			continue
		}
		items[p.Item].Payloads = append(items[p.Item].Payloads, p.Payload)
	}
	return items
}
