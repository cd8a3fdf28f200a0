package log

import (
	"os"

	"github.com/catchuapp/catchu/utils/dotenv"
	"github.com/catchuapp/catchu/utils/flag"
	"github.com/sirupsen/logrus"
)

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// This init function is only for testing cases, where the entry point is not
// main function. Unit test will fail with nil pointer dereference if we don't
// init here.
func init() {
	InitLogger()
}

func InitLogger() {
	logger = logrus.New()

	// JSON in prod for log collection, plain stderr everywhere else for
	// better readability.
	if os.Getenv("CATCHU_ENV") == dotenv.ProdEnv {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if *flag.IsDevelopment {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.SetOutput(os.Stderr)

	Log = logger.WithFields(
		logrus.Fields{"service": *flag.ServiceName, "is_development": os.Getenv("CATCHU_ENV") != dotenv.ProdEnv},
	)
}
