package stores

import (
	"os"

	"coderoom-server/core"
	"coderoom-server/stores/filesystem"
	"coderoom-server/stores/memory"
	"coderoom-server/stores/sqlite"

	"github.com/sirupsen/logrus"
)

func GetStore() core.SnippetStore {
	storageType := os.Getenv("STORAGE_TYPE")
	var store core.SnippetStore

	storageField := logrus.Fields{
		"storageType": storageType,
	}

	switch storageType {
	case "filesystem":
		basePath := os.Getenv("LOCAL_STORAGE_PATH")
		storageField["basePath"] = basePath
		store = filesystem.NewSnippetStore(basePath)
	case "sqlite":
		dataSourceName := os.Getenv("DATA_SOURCE_NAME")
		storageField["dataSourceName"] = dataSourceName
		store = sqlite.NewSnippetStore(dataSourceName)
	default:
		store = memory.NewSnippetStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store
}
