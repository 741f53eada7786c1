package common_test

import (
	"bytes"
	"defectboard/common"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

var _ = Describe("IDs", func() {
	It("should generate increasing ids", func() {
		worker := common.NewIDWorker()
		first := common.NextID(worker)
		second := common.NextID(worker)
		Expect(first).To(BeNumerically(">", 0))
		Expect(second).To(BeNumerically(">", first))
	})

	It("should tell success statuses", func() {
		Expect(common.HttpStatusIsSuccess(200)).To(BeTrue())
		Expect(common.HttpStatusIsSuccess(204)).To(BeTrue())
		Expect(common.HttpStatusIsSuccess(199)).To(BeFalse())
		Expect(common.HttpStatusIsSuccess(302)).To(BeFalse())
	})
})

var _ = Describe("Logs", func() {
	var (
		logger    *logrus.Logger
		saved     logrus.Level
		savedFmt  logrus.Formatter
		savedOut  = logrus.StandardLogger().Out
		collected *bytes.Buffer
	)

	BeforeEach(func() {
		logger = logrus.StandardLogger()
		saved, savedFmt, savedOut = logger.GetLevel(), logger.Formatter, logger.Out
		collected = &bytes.Buffer{}
		logger.SetOutput(collected)
	})
	AfterEach(func() {
		logger.SetLevel(saved)
		logger.Formatter = savedFmt
		logger.SetOutput(savedOut)
	})

	It("should stamp service and instance", func() {
		common.ConfigureLogger("info", "json")
		logrus.Info("hello")
		Expect(collected.String()).To(ContainSubstring(`"service":"defectboard"`))
		Expect(collected.String()).To(ContainSubstring(`"instance":"` + common.GetServiceInstance() + `"`))
	})

	It("should apply the level and keep it on unknown input", func() {
		common.ConfigureLogger("warn", "text")
		Expect(logger.GetLevel()).To(Equal(logrus.WarnLevel))
		common.ConfigureLogger("chatty", "text")
		Expect(logger.GetLevel()).To(Equal(logrus.WarnLevel))
	})
})
