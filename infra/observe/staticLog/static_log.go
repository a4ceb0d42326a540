package staticLog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 全局静态logger, 供拟合迭代过程打点
var Log = logrus.New()

func init() {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	Log.SetLevel(logrus.InfoLevel)
	Log.SetOutput(os.Stderr)
}

// InitFile 切到文件输出并按大小滚动, path为空则保持stderr
func InitFile(path string, alsoStderr bool) {
	if path == "" {
		return
	}
	rotate := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    64, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	if alsoStderr {
		Log.SetOutput(io.MultiWriter(os.Stderr, rotate))
	} else {
		Log.SetOutput(rotate)
	}
}

func SetLevel(lv logrus.Level) {
	Log.SetLevel(lv)
}
