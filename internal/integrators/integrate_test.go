package integrators_test

import (
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/compsim/internal/dynamo"
	"github.com/san-kum/compsim/internal/integrators"
)

func exponential(c float64) dynamo.DerivativeFunc {
	return func(_ float64, x dynamo.State) dynamo.State {
		return dynamo.State{c * x[0]}
	}
}

// relErrorAt integrates dy/dt = c*y with y(0) = 1 and returns the relative
// error against exp(c*t) at grid index idx.
func relErrorAt(c, dt float64, idx int) float64 {
	traj, err := integrators.Integrate(exponential(c), dynamo.State{1}, 0, 1, dt)
	Expect(err).NotTo(HaveOccurred())
	exact := math.Exp(c * traj.Time(idx))
	return math.Abs(traj.At(0, idx)-exact) / exact
}

var _ = Describe("Integrate", func() {
	Context("with a zero derivative", func() {
		It("repeats the initial state in every column", func() {
			zero := func(_ float64, x dynamo.State) dynamo.State {
				return make(dynamo.State, len(x))
			}
			x0 := dynamo.State{0.47, 0.35, -3.25}

			traj, err := integrators.Integrate(zero, x0, 0, 5, 0.1)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < traj.Len(); i++ {
				Expect(traj.Column(i)).To(Equal(x0))
			}
		})
	})

	Context("with a linear ODE dy/dt = c*y", func() {
		DescribeTable("matches the analytic solution to fourth order",
			func(c float64) {
				coarse := relErrorAt(c, 0.02, 25)
				fine := relErrorAt(c, 0.01, 50)

				Expect(coarse).To(BeNumerically("<", math.Pow(0.02, 4)))
				Expect(fine).To(BeNumerically("<", math.Pow(0.01, 4)))
				Expect(coarse / fine).To(BeNumerically("~", 16, 1))
			},
			Entry("growth", 1.0),
			Entry("decay", -1.0),
			Entry("fast growth", 2.0),
		)
	})

	Context("with a grid that does not divide the span", func() {
		It("excludes tmax from a half-open grid", func() {
			traj, err := integrators.Integrate(exponential(1), dynamo.State{1}, 0, 1, 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(traj.Times()).To(Equal([]float64{0.0, 0.5}))
			Expect(traj.Len()).To(Equal(2))
		})
	})

	Context("when called twice", func() {
		It("produces bit-identical output", func() {
			f := func(t float64, x dynamo.State) dynamo.State {
				return dynamo.State{
					1.53 * x[0] * (1 - (x[0] + 1.3*x[1])),
					1.27*x[1]*(1-(x[1]+1.3*x[0])) + 0.01*math.Sin(t),
				}
			}
			x0 := dynamo.State{0.47, 0.35}

			a, err := integrators.Integrate(f, x0, 0, 20, 0.01)
			Expect(err).NotTo(HaveOccurred())
			b, err := integrators.Integrate(f, x0, 0, 20, 0.01)
			Expect(err).NotTo(HaveOccurred())

			Expect(mat.Equal(a.Matrix(), b.Matrix())).To(BeTrue())
			Expect(a.Times()).To(Equal(b.Times()))
		})
	})

	Context("with a one-dimensional state", func() {
		It("integrates a scalar derivative", func() {
			traj, err := integrators.Integrate(exponential(-0.5), dynamo.State{2}, 0, 4, 0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(traj.Dims()).To(Equal(1))

			last := traj.Len() - 1
			Expect(traj.At(0, last)).To(BeNumerically("~", 2*math.Exp(-0.5*traj.Time(last)), 1e-9))
		})
	})

	Context("when the derivative returns the wrong length", func() {
		It("fails fast with a dimension mismatch", func() {
			bad := func(_ float64, _ dynamo.State) dynamo.State { return dynamo.State{1} }
			traj, err := integrators.Integrate(bad, dynamo.State{1, 2}, 0, 1, 0.1)
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
			Expect(traj).To(BeNil())
		})
	})

	Context("with invalid stepping parameters", func() {
		DescribeTable("returns a configuration error",
			func(t0, tmax, dt float64, expected error) {
				_, err := integrators.Integrate(exponential(1), dynamo.State{1}, t0, tmax, dt)
				Expect(err).To(MatchError(expected))
			},
			Entry("zero step", 0.0, 1.0, 0.0, dynamo.ErrInvalidStep),
			Entry("negative step", 0.0, 1.0, -0.5, dynamo.ErrInvalidStep),
			Entry("tmax equal to t0", 1.0, 1.0, 0.1, dynamo.ErrInvalidSpan),
			Entry("tmax before t0", 2.0, 1.0, 0.1, dynamo.ErrInvalidSpan),
		)
	})

	Context("when independent integrations run concurrently", func() {
		It("gives the same results as running them one by one", func() {
			rates := []float64{-1, -0.5, 0.5, 1, 1.5, 2}
			sequential := make([]*dynamo.Trajectory, len(rates))
			for i, c := range rates {
				traj, err := integrators.Integrate(exponential(c), dynamo.State{1}, 0, 2, 0.01)
				Expect(err).NotTo(HaveOccurred())
				sequential[i] = traj
			}

			concurrent := make([]*dynamo.Trajectory, len(rates))
			var wg sync.WaitGroup
			for i, c := range rates {
				wg.Add(1)
				go func(idx int, c float64) {
					defer wg.Done()
					defer GinkgoRecover()
					traj, err := integrators.Integrate(exponential(c), dynamo.State{1}, 0, 2, 0.01)
					Expect(err).NotTo(HaveOccurred())
					concurrent[idx] = traj
				}(i, c)
			}
			wg.Wait()

			for i := range rates {
				Expect(mat.Equal(sequential[i].Matrix(), concurrent[i].Matrix())).To(BeTrue())
			}
		})
	})
})
