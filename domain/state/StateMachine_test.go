package state_test

import (
	"defectboard/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		stateMachine *state.StateMachine
	)

	BeforeEach(func() {
		//         NEW        OPEN         FIXED
		// NEW      -          V (open)     X
		// OPEN     X          -            V (fix)
		// FIXED    X          V (reopen)   -
		stateMachine = state.NewStateMachine(
			[]state.State{{Name: "NEW"}, {Name: "OPEN", Category: state.InProcess}, {Name: "FIXED", Category: state.Done}},
			[]state.Transition{
				{Name: "open", From: "NEW", To: "OPEN"},
				{Name: "fix", From: "OPEN", To: "FIXED"},
				{Name: "reopen", From: "FIXED", To: "OPEN"},
			})
	})

	Describe("AvailableTransitions", func() {
		It("should filter by source state", func() {
			Ω(stateMachine.AvailableTransitions("OPEN", "")).Should(Equal([]state.Transition{
				{Name: "fix", From: "OPEN", To: "FIXED"},
			}))
			Ω(stateMachine.AvailableTransitions("FIXED", "")).Should(Equal([]state.Transition{
				{Name: "reopen", From: "FIXED", To: "OPEN"},
			}))
		})

		It("should filter by target state", func() {
			Ω(stateMachine.AvailableTransitions("", "OPEN")).Should(Equal([]state.Transition{
				{Name: "open", From: "NEW", To: "OPEN"},
				{Name: "reopen", From: "FIXED", To: "OPEN"},
			}))
		})

		It("should return empty result for unknown state", func() {
			Ω(stateMachine.AvailableTransitions("UNKNOWN", "")).Should(BeEmpty())
			Ω(stateMachine.AvailableTransitions("", "")).Should(HaveLen(3))
		})
	})

	Describe("FindState", func() {
		It("should find states by name", func() {
			s, found := stateMachine.FindState("FIXED")
			Expect(found).To(BeTrue())
			Expect(s).To(Equal(state.State{Name: "FIXED", Category: state.Done}))

			_, found = stateMachine.FindState("CLOSED")
			Expect(found).To(BeFalse())
		})
	})

	Describe("CanTransit", func() {
		It("should follow declared transitions only", func() {
			Expect(stateMachine.CanTransit("NEW", "OPEN")).To(BeTrue())
			Expect(stateMachine.CanTransit("NEW", "FIXED")).To(BeFalse())
			Expect(stateMachine.CanTransit("FIXED", "OPEN")).To(BeTrue())
		})

		It("should allow staying in a known state", func() {
			Expect(stateMachine.CanTransit("OPEN", "OPEN")).To(BeTrue())
			Expect(stateMachine.CanTransit("CLOSED", "CLOSED")).To(BeFalse())
		})
	})
})
