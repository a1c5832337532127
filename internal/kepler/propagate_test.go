package kepler_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rode/internal/kepler"
	"github.com/san-kum/rode/internal/numeric"
)

const earthK = 398600.4418

func deg(d float64) float64 { return d * math.Pi / 180 }

func issOrbit() kepler.Elements {
	return kepler.Elements{
		K:    earthK,
		P:    6780.8472106,
		Ecc:  0.00130547,
		Inc:  deg(51.6012092),
		Raan: deg(198.37949974),
		Argp: deg(39.26289661),
		Nu:   deg(46.59580468),
	}
}

var _ = Describe("Propagate", func() {
	Context("on a near-circular low Earth orbit", func() {
		var el kepler.Elements

		BeforeEach(func() {
			el = issOrbit()
		})

		It("returns the starting anomaly for a zero time of flight", func() {
			nu, err := kepler.Propagate(el, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(nu).To(BeNumerically("~", el.Nu, 1e-12))
		})

		DescribeTable("matches reference anomalies",
			func(tof, expected, tol float64) {
				nu, err := kepler.Propagate(el, tof)
				Expect(err).NotTo(HaveOccurred())
				Expect(nu).To(BeNumerically("~", expected, tol))
			},
			Entry("100 s", 100.0, 0.9265094210290502, 1e-8),
			Entry("20000 s", 20000.0, -1.7102617293760711, 1e-7),
		)

		It("returns to the starting anomaly after one period", func() {
			period, err := el.Period()
			Expect(err).NotTo(HaveOccurred())
			Expect(period).To(BeNumerically("~", 5556.9697, 1e-3))

			nu, err := kepler.Propagate(el, period)
			Expect(err).NotTo(HaveOccurred())
			Expect(nu).To(BeNumerically("~", el.Nu, 1e-9))
		})

		It("carries the orientation elements through unchanged", func() {
			out, err := kepler.Propagated(el, 1234)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Inc).To(Equal(el.Inc))
			Expect(out.Raan).To(Equal(el.Raan))
			Expect(out.Argp).To(Equal(el.Argp))
			Expect(out.Nu).NotTo(Equal(el.Nu))
		})

		It("agrees with the flat argument form", func() {
			a, err := kepler.Propagate(el, 777)
			Expect(err).NotTo(HaveOccurred())
			b, err := kepler.PropagateTrueAnomaly(el.K, el.P, el.Ecc, el.Inc, el.Raan, el.Argp, el.Nu, 777)
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(Equal(a))
		})
	})

	It("returns to the start after one period of a circular orbit", func() {
		el := kepler.Elements{K: earthK, P: 7000, Ecc: 0, Nu: 0.3}
		period := 2 * math.Pi * math.Sqrt(7000*7000*7000/earthK)

		nu, err := kepler.Propagate(el, period)
		Expect(err).NotTo(HaveOccurred())
		Expect(nu).To(BeNumerically("~", 0.3, 1e-12))
	})

	It("keeps results in (-pi, pi]", func() {
		el := kepler.Elements{K: earthK, P: 9000, Ecc: 0.4, Nu: 3}
		for tof := -50000.0; tof <= 50000; tof += 1375 {
			nu, err := kepler.Propagate(el, tof)
			Expect(err).NotTo(HaveOccurred())
			Expect(nu).To(BeNumerically(">", -math.Pi))
			Expect(nu).To(BeNumerically("<=", math.Pi))
		}
	})

	DescribeTable("round trips forward and backward",
		func(ecc, nu0, tof, tol float64) {
			el := kepler.Elements{K: earthK, P: 7000, Ecc: ecc, Nu: nu0}
			forward, err := kepler.Propagated(el, tof)
			Expect(err).NotTo(HaveOccurred())

			back, err := kepler.Propagate(forward, -tof)
			Expect(err).NotTo(HaveOccurred())
			Expect(back).To(BeNumerically("~", nu0, tol))
		},
		Entry("eccentric ellipse", 0.7, 2.5, 30000.0, 1e-9),
		Entry("eccentric ellipse, 1e8 s", 0.7, 2.5, 1e8, 1e-9),
		Entry("near-parabolic ellipse", 0.995, 0.4, 2000.0, 1e-9),
		Entry("near-parabolic ellipse, 1e8 s", 0.995, 0.4, 1e8, 1e-9),
		Entry("parabola", 1.0, -0.5, 5000.0, 1e-9),
		Entry("parabola, 1e8 s", 1.0, -0.5, 1e8, 1e-7),
		Entry("near-parabolic hyperbola", 1.005, 0.4, 2000.0, 1e-9),
		Entry("hyperbola", 1.5, 0.5, 3000.0, 1e-9),
		Entry("fast hyperbola", 4.0, -1.0, 3600.0, 1e-9),
	)

	// Starting at periapsis, flying backward mirrors flying forward.
	DescribeTable("is odd in the time of flight about periapsis",
		func(ecc float64) {
			el := kepler.Elements{K: earthK, P: 7000, Ecc: ecc}
			for _, tof := range []float64{10, 1e3, 1e5, 1e7, 1e8, 1e10} {
				forward, err := kepler.Propagate(el, tof)
				Expect(err).NotTo(HaveOccurred())
				backward, err := kepler.Propagate(el, -tof)
				Expect(err).NotTo(HaveOccurred())

				Expect(backward).To(BeNumerically("~", -forward, 1e-9), "tof %g", tof)
				if el.Shape() != kepler.Elliptic {
					Expect(forward).To(BeNumerically(">", 0), "tof %g", tof)
				}
			}
		},
		Entry("eccentric ellipse", 0.7),
		Entry("near-parabolic ellipse", 0.995),
		Entry("parabola", 1.0),
		Entry("near-parabolic hyperbola", 1.005),
		Entry("hyperbola", 1.5),
		Entry("fast hyperbola", 4.0),
	)

	It("keeps Barker's equation satisfied far before periapsis", func() {
		el := kepler.Elements{K: earthK, P: 7000, Ecc: 1}
		q := el.P / 2
		n := math.Sqrt(earthK / (2 * q * q * q))

		for _, tof := range []float64{-1e8, -1e10, -1e12} {
			nu, err := kepler.Propagate(el, tof)
			Expect(err).NotTo(HaveOccurred())
			Expect(nu).To(BeNumerically("<", 0))

			D := math.Tan(nu / 2)
			Expect(D + D*D*D/3).To(BeNumerically("~", n*tof, 1e-6*math.Abs(n*tof)), "tof %g", tof)
		}
	})

	It("solves Barker's equation for a parabola", func() {
		el := kepler.Elements{K: earthK, P: 7000, Ecc: 1, Nu: 0}
		Expect(el.Shape()).To(Equal(kepler.Parabolic))

		nu, err := kepler.Propagate(el, 1000)
		Expect(err).NotTo(HaveOccurred())

		q := el.P / 2
		D := math.Tan(nu / 2)
		Expect(D + D*D*D/3).To(BeNumerically("~", math.Sqrt(earthK/(2*q*q*q))*1000, 1e-10))
	})

	It("varies continuously as the eccentricity crosses one", func() {
		eccs := []float64{0.98, 0.99, 0.995, 0.999, 0.9999, 0.999999, 1, 1.000001, 1.0001, 1.001, 1.005, 1.01, 1.02}
		results := make([]float64, len(eccs))
		for i, ecc := range eccs {
			nu, err := kepler.Propagate(kepler.Elements{K: earthK, P: 7000, Ecc: ecc, Nu: 0.5}, 1000)
			Expect(err).NotTo(HaveOccurred())
			results[i] = nu
		}

		for i := 1; i < len(eccs); i++ {
			slope := math.Abs(results[i]-results[i-1]) / (eccs[i] - eccs[i-1])
			Expect(slope).To(BeNumerically("<", 0.05), "between ecc %g and %g", eccs[i-1], eccs[i])
		}

		Expect(results[4]).To(BeNumerically("~", results[6], 1e-5))
		Expect(results[8]).To(BeNumerically("~", results[6], 1e-5))
	})

	DescribeTable("rejects invalid elements",
		func(el kepler.Elements, tof float64) {
			_, err := kepler.Propagate(el, tof)
			Expect(err).To(MatchError(numeric.ErrInvalidArgument))
		},
		Entry("negative eccentricity", kepler.Elements{K: earthK, P: 7000, Ecc: -0.1}, 10.0),
		Entry("zero gravitational parameter", kepler.Elements{K: 0, P: 7000, Ecc: 0.1}, 10.0),
		Entry("negative semi-latus rectum", kepler.Elements{K: earthK, P: -1, Ecc: 0.1}, 10.0),
		Entry("NaN anomaly", kepler.Elements{K: earthK, P: 7000, Ecc: 0.1, Nu: math.NaN()}, 10.0),
		Entry("infinite time of flight", kepler.Elements{K: earthK, P: 7000, Ecc: 0.1}, math.Inf(1)),
		Entry("anomaly beyond the asymptote", kepler.Elements{K: earthK, P: 7000, Ecc: 1.5, Nu: 2.5}, 10.0),
		Entry("parabola at infinity", kepler.Elements{K: earthK, P: 7000, Ecc: 1, Nu: math.Pi}, 10.0),
		Entry("parabola at infinity, negative side", kepler.Elements{K: earthK, P: 7000, Ecc: 1, Nu: -math.Pi}, 10.0),
	)

	It("has no period for open orbits", func() {
		_, err := kepler.Elements{K: earthK, P: 7000, Ecc: 1.2}.Period()
		Expect(err).To(MatchError(numeric.ErrInvalidArgument))
	})
})

var _ = Describe("PropagateMany", func() {
	It("matches sequential propagation", func() {
		els := []kepler.Elements{
			issOrbit(),
			{K: earthK, P: 7000, Ecc: 0.7, Nu: 2.5},
			{K: earthK, P: 7000, Ecc: 1, Nu: -0.5},
			{K: earthK, P: 7000, Ecc: 1.5, Nu: 0.5},
		}

		got, err := kepler.PropagateMany(context.Background(), els, 4321)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(len(els)))

		for i, el := range els {
			want, err := kepler.Propagate(el, 4321)
			Expect(err).NotTo(HaveOccurred())
			Expect(got[i]).To(Equal(want))
		}
	})

	It("fails when any element set is invalid", func() {
		els := []kepler.Elements{issOrbit(), {K: earthK, P: 7000, Ecc: -1}}
		_, err := kepler.PropagateMany(context.Background(), els, 10)
		Expect(err).To(MatchError(numeric.ErrInvalidArgument))
	})

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := kepler.PropagateMany(ctx, []kepler.Elements{issOrbit()}, 10)
		Expect(err).To(MatchError(context.Canceled))
	})
})
