package queue

import "context"

// CrawlStateEncoder can serialize itself for storage. This is satisfied by
// *profile.CrawlState without requiring a direct import of that package.
type CrawlStateEncoder interface {
	Encode() (string, error)
}

// PersistCrawlState encodes state and writes the result to item via store.Update.
// On success the updated item fields (including any store-generated values)
// are written back through the item pointer. Returns a non-nil error when
// encoding or persistence fails; callers decide how to log the result.
func PersistCrawlState(ctx context.Context, store *Store, item *Item, state CrawlStateEncoder) error {
	encoded, err := state.Encode()
	if err != nil {
		return err
	}
	copy := *item
	copy.CrawlStateJSON = encoded
	if store != nil {
		if err := store.Update(ctx, &copy); err != nil {
			return err
		}
	}
	*item = copy
	return nil
}
