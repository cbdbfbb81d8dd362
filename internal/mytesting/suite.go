package mytesting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/jcooky/go-din"
	"github.com/stretchr/testify/suite"
)

// Suite gives every test a fresh din test container backed by its own
// in-memory SQLite database.
type Suite struct {
	suite.Suite
	context.Context

	Cancel    context.CancelFunc
	Container *din.Container
}

func (s *Suite) SetupTest() {
	root, err := projectRoot()
	s.Require().NoError(err)

	if os.Getenv("ENV_TEST_FILE") == "" {
		s.T().Setenv("ENV_TEST_FILE", filepath.Join(root, ".env.test"))
	}
	s.T().Setenv("DATABASE_URL", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))

	s.Context, s.Cancel = context.WithCancel(context.TODO())
	s.Container = din.NewContainer(s.Context, din.EnvTest)
}

func (s *Suite) TearDownTest() {
	s.Container.Close()
	s.Cancel()
}

// projectRoot is the directory holding go.mod, found by walking up from
// this source file.
func projectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to get caller information")
	}

	for dir := filepath.Dir(filename); ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above %s", filename)
		}
		dir = parent
	}
}
