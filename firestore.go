package physique

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps blobs as documents: <collection>/<user>/keys/<key>
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

type blob struct {
	Value   string    `firestore:"value"`
	Updated time.Time `firestore:"updated,serverTimestamp"`
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	if collection == "" {
		collection = "users"
	}
	return &FirestoreStore{client: client, collection: collection}
}

func (s *FirestoreStore) doc(user, key string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(url.PathEscape(user)).Collection("keys").Doc(key)
}

func (s *FirestoreStore) Get(ctx context.Context, user, key string, v any) error {
	snap, err := s.doc(user, key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("firestore get %s: %w", key, err)
	}
	var b blob
	if err := snap.DataTo(&b); err != nil {
		return fmt.Errorf("firestore decode %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(b.Value), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *FirestoreStore) Put(ctx context.Context, user, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if _, err := s.doc(user, key).Set(ctx, &blob{Value: string(data)}); err != nil {
		return fmt.Errorf("firestore set %s: %w", key, err)
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
