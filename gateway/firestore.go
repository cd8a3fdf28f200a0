package gateway

import (
	"context"

	"cloud.google.com/go/firestore"
	Logger "github.com/catchuapp/catchu/utils/log"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreGateway implements DocumentGateway against Cloud Firestore, the
// backend the production app runs on.
type FirestoreGateway struct {
	client *firestore.Client
}

func NewFirestoreGateway(ctx context.Context, projectId string) (*FirestoreGateway, error) {
	client, err := firestore.NewClient(ctx, projectId)
	if err != nil {
		return nil, errors.Wrap(err, "fail to create firestore client")
	}
	return &FirestoreGateway{client: client}, nil
}

func (g *FirestoreGateway) Close() error {
	return g.client.Close()
}

// resolveSentinels swaps our vendor-neutral ServerTimestamp sentinel for the
// firestore one right before the write.
func resolveSentinels(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = firestore.ServerTimestamp
			continue
		}
		out[k] = v
	}
	return out
}

func (g *FirestoreGateway) CreateDocument(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	ref, _, err := g.client.Collection(collection).Add(ctx, resolveSentinels(fields))
	if err != nil {
		return "", errors.Wrap(err, "fail to create document in "+collection)
	}
	return ref.ID, nil
}

func (g *FirestoreGateway) GetDocument(ctx context.Context, collection string, id string) (map[string]interface{}, error) {
	snap, err := g.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "fail to get document "+collection+"/"+id)
	}
	return snap.Data(), nil
}

func (g *FirestoreGateway) buildQuery(collection string, q Query) firestore.Query {
	fq := g.client.Collection(collection).Query
	if q.Filter != nil {
		fq = fq.Where(q.Filter.Field, "==", q.Filter.Value)
	}
	if q.OrderBy != nil {
		dir := firestore.Asc
		if q.OrderBy.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy.Field, dir)
	}
	return fq
}

func (g *FirestoreGateway) QueryDocuments(ctx context.Context, collection string, q Query) (Snapshot, error) {
	iter := g.buildQuery(collection, q).Documents(ctx)
	defer iter.Stop()

	var snapshot Snapshot
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "fail to query documents in "+collection)
		}
		snapshot = append(snapshot, Document{Id: doc.Ref.ID, Fields: doc.Data()})
	}
	return snapshot, nil
}

func (g *FirestoreGateway) Subscribe(ctx context.Context, collection string, q Query, handler SnapshotHandler) (Unsubscribe, error) {
	subCtx, cancel := context.WithCancel(ctx)
	iter := g.buildQuery(collection, q).Snapshots(subCtx)

	go func() {
		for {
			qsnap, err := iter.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					// unsubscribed, not an error
					return
				}
				// surface once, then stop delivering
				handler(nil, errors.Wrap(err, "live query on "+collection+" failed"))
				return
			}

			snapshot := make(Snapshot, 0, qsnap.Size)
			docs := qsnap.Documents
			for {
				doc, err := docs.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					handler(nil, errors.Wrap(err, "fail to read live snapshot on "+collection))
					cancel()
					return
				}
				snapshot = append(snapshot, Document{Id: doc.Ref.ID, Fields: doc.Data()})
			}
			handler(snapshot, nil)
		}
	}()

	return OnceUnsubscribe(func() {
		cancel()
		iter.Stop()
		Logger.Log.Debug("live query on ", collection, " detached")
	}), nil
}
