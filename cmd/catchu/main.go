package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/catchuapp/catchu/flow"
	"github.com/catchuapp/catchu/gateway"
	"github.com/catchuapp/catchu/model"
	"github.com/catchuapp/catchu/utils/dotenv"
	"github.com/catchuapp/catchu/utils/flag"
	Logger "github.com/catchuapp/catchu/utils/log"
)

// Dev harness: connects to the configured Firestore project, subscribes to
// the post list and logs every snapshot until interrupted. Useful to watch
// live pushes while poking the app, not a product surface.
func main() {
	flag.Parse()
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	Logger.InitLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, err := gateway.NewFirestoreGateway(ctx, os.Getenv("FIRESTORE_PROJECT_ID"))
	if err != nil {
		Logger.Log.Fatal("fail to connect to firestore: ", err)
	}
	defer g.Close()

	unsubscribe, err := flow.NewPostList(g).Subscribe(ctx, func(posts []model.Post) {
		Logger.Log.Info("post list snapshot with ", len(posts), " posts")
		for _, post := range posts {
			Logger.Log.Info("  ", post.CreateDate.Format(time.RFC3339), " ", post.Title)
		}
	}, func(err error) {
		Logger.Log.Error("post list subscription died: ", err)
	})
	if err != nil {
		Logger.Log.Fatal(err)
	}
	defer unsubscribe()

	Logger.Log.Info("dev harness up, ctrl-c to exit")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
