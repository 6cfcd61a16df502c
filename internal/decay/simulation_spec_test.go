package decay_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/decaysim/internal/decay"
)

var _ = Describe("Simulation", func() {
	var (
		ctx context.Context
		sim *decay.Simulation
	)

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("with the Iodine-128 parameters", func() {
		BeforeEach(func() {
			var err error
			sim, err = decay.New(0.02775, 50, 0.1, decay.WithSeed(2024))
			Expect(err).NotTo(HaveOccurred())
		})

		It("starts with every nucleus undecayed", func() {
			Expect(sim.Undecayed()).To(Equal(2500))
			Expect(sim.String()).NotTo(ContainSubstring("0"))
		})

		It("leaves the population halved after FindHalfTime", func() {
			before := sim.Undecayed()
			h, err := sim.FindHalfTime(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(h).To(BeNumerically(">", 0))
			Expect(sim.Undecayed()).To(BeNumerically("<", before))
			Expect(sim.Undecayed()).To(BeNumerically("<=", 1250))
			Expect(h).To(BeNumerically("~", decay.ExpectedHalfTime(0.02775), 3))
		})

		It("renders an N×N grid of 0/1 tokens", func() {
			_, err := sim.FindHalfTime(ctx)
			Expect(err).NotTo(HaveOccurred())

			rows := strings.Split(sim.String(), "\n")
			Expect(rows).To(HaveLen(50))
			ones := 0
			for _, row := range rows {
				tokens := strings.Fields(row)
				Expect(tokens).To(HaveLen(50))
				for _, tok := range tokens {
					Expect(tok).To(BeElementOf("0", "1"))
					if tok == "1" {
						ones++
					}
				}
			}
			Expect(ones).To(Equal(sim.Undecayed()))
		})
	})

	DescribeTable("rejects non-positive arguments",
		func(decayConst float64, size int, timestep float64) {
			s, err := decay.New(decayConst, size, timestep)
			Expect(err).To(MatchError(decay.ErrInvalidParameter))
			Expect(s).To(BeNil())
		},
		Entry("zero decay constant", 0.0, 5, 0.1),
		Entry("zero size", 1.0, 0, 0.1),
		Entry("negative timestep", 1.0, 5, -1.0),
	)

	It("reproduces lattices for identical seeds", func() {
		a, err := decay.New(0.7, 30, 0.05, decay.WithSeed(9), decay.WithWorkers(3))
		Expect(err).NotTo(HaveOccurred())
		b, err := decay.New(0.7, 30, 0.05, decay.WithSeed(9), decay.WithWorkers(3))
		Expect(err).NotTo(HaveOccurred())

		ha, err := a.FindHalfTime(ctx)
		Expect(err).NotTo(HaveOccurred())
		hb, err := b.FindHalfTime(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(ha).To(Equal(hb))
		Expect(a.String()).To(Equal(b.String()))
	})

	It("terminates for a single nucleus", func() {
		s, err := decay.New(1.0, 1, 0.01)
		Expect(err).NotTo(HaveOccurred())

		h, err := s.FindHalfTime(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(h).To(BeNumerically(">", 0))
		Expect(s.String()).To(Equal("0"))
	})

	It("reports a stall when the step cap is exhausted", func() {
		s, err := decay.New(1e-4, 4, 0.01, decay.WithSeed(1), decay.WithMaxSteps(3))
		Expect(err).NotTo(HaveOccurred())

		_, err = s.FindHalfTime(ctx)
		Expect(err).To(MatchError(decay.ErrSimulationStalled))
		Expect(s.Steps()).To(Equal(3))
	})
})
