package elimination

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcushen/cassandra/node"
	"github.com/rcushen/cassandra/paramset"
	"github.com/rcushen/cassandra/quadrature"

	"github.com/rcushen/cassandra/network"
)

// buildUniformPassThrough builds a uniform root A on [0,1] with a child B
// whose equation is the identity f(A,·)=A under default Gaussian
// conditional noise.
func buildUniformPassThrough(t *testing.T) *network.Network {
	t.Helper()
	domainA, err := node.NewContinuousDomain(0, 1)
	require.NoError(t, err)
	uniform := node.MarginalDensityFunc(func(x float64, theta paramset.Set) float64 {
		if x < 0 || x > 1 {
			return 0
		}
		return 1
	})
	a, err := node.NewRoot("A", domainA, nil, uniform, nil)
	require.NoError(t, err)

	domainB, err := node.NewContinuousDomain(-20, 21)
	require.NoError(t, err)
	equation := node.EquationFunc(func(parents map[string]float64, theta paramset.Set) float64 {
		return parents["A"]
	})
	b, err := node.NewContinuousChild("B", domainB, []string{"A"}, nil, equation, node.DefaultDistributionParameters())
	require.NoError(t, err)

	net, err := network.New([]*node.Node{a, b})
	require.NoError(t, err)
	return net
}

func TestInferUniformRootPassThrough(t *testing.T) {
	net := buildUniformPassThrough(t)
	ve := New(net, 0, nil)

	got, err := ve.Infer("B", ContinuousRange(0, 1), map[string]float64{"A": 0.5}, paramset.Empty())
	require.NoError(t, err)

	want := quadrature.NormalCDF(1, 0.5, 1) - quadrature.NormalCDF(0, 0.5, 1)
	require.InDelta(t, want, got, 1e-4)
	require.InDelta(t, 0.3829, got, 1e-3)
}

func TestInferIdempotenceOverFullDomain(t *testing.T) {
	net := buildUniformPassThrough(t)
	ve := New(net, 0, nil)

	got, err := ve.Infer("A", ContinuousRange(0, 1), nil, paramset.Empty())
	require.NoError(t, err)
	require.InDelta(t, 1.0, got, 1e-4)
}

// buildStandardNormalRoot is a lone standard-normal root over a wide
// interval, for checking normalisation against the closed-form CDF.
func buildStandardNormalRoot(t *testing.T) *network.Network {
	t.Helper()
	domain, err := node.NewContinuousDomain(-100, 100)
	require.NoError(t, err)
	density := node.MarginalDensityFunc(func(x float64, theta paramset.Set) float64 {
		return quadrature.NormalDensity(x, 0, 1)
	})
	a, err := node.NewRoot("A", domain, nil, density, nil)
	require.NoError(t, err)
	net, err := network.New([]*node.Node{a})
	require.NoError(t, err)
	return net
}

func TestInferNormalisationCloseToOne(t *testing.T) {
	net := buildStandardNormalRoot(t)
	ve := New(net, 0, nil)

	got, err := ve.Infer("A", ContinuousRange(-5, 5), nil, paramset.Empty())
	require.NoError(t, err)
	require.InDelta(t, 0.9999994, got, 1e-4)
}

// buildTurbine builds a two-layer continuous network: temperature and
// wind_speed roots feeding a torque child (k·v²/T), which feeds a power
// child (c·torque).
func buildTurbine(t *testing.T) *network.Network {
	t.Helper()
	domainTemp, err := node.NewContinuousDomain(-100, 100)
	require.NoError(t, err)
	tempDensity := node.MarginalDensityFunc(func(x float64, theta paramset.Set) float64 {
		return quadrature.NormalDensity(x, 25, 10)
	})
	temperature, err := node.NewRoot("temperature", domainTemp, nil, tempDensity, nil)
	require.NoError(t, err)

	domainWind, err := node.NewContinuousDomain(0, 100)
	require.NoError(t, err)
	windDensity := node.MarginalDensityFunc(func(x float64, theta paramset.Set) float64 {
		return quadrature.NormalDensity(x, 25, 5)
	})
	windSpeed, err := node.NewRoot("wind_speed", domainWind, nil, windDensity, nil)
	require.NoError(t, err)

	domainTorque, err := node.NewContinuousDomain(-100, 100)
	require.NoError(t, err)
	torqueEquation := node.EquationFunc(func(parents map[string]float64, theta paramset.Set) float64 {
		k, _ := theta.Get("torque_factor")
		return k * parents["wind_speed"] * parents["wind_speed"] / parents["temperature"]
	})
	torque, err := node.NewContinuousChild("torque", domainTorque, []string{"temperature", "wind_speed"}, []string{"torque_factor"}, torqueEquation, node.DefaultDistributionParameters())
	require.NoError(t, err)

	domainPower, err := node.NewContinuousDomain(0, 100)
	require.NoError(t, err)
	powerEquation := node.EquationFunc(func(parents map[string]float64, theta paramset.Set) float64 {
		c, _ := theta.Get("power_factor")
		return c * parents["torque"]
	})
	power, err := node.NewContinuousChild("power", domainPower, []string{"torque"}, []string{"power_factor"}, powerEquation, node.DefaultDistributionParameters())
	require.NoError(t, err)

	net, err := network.New([]*node.Node{temperature, windSpeed, torque, power})
	require.NoError(t, err)
	return net
}

func TestInferTurbineMultiLayerContinuous(t *testing.T) {
	net := buildTurbine(t)
	ve := New(net, 0, nil)
	theta := paramset.New(map[string]float64{"torque_factor": 0.5, "power_factor": 0.5})

	got, err := ve.Infer("torque", ContinuousRange(10, 12), map[string]float64{"temperature": 25, "wind_speed": 25}, theta)
	require.NoError(t, err)

	want := quadrature.NormalCDF(12, 12.5, 1) - quadrature.NormalCDF(10, 12.5, 1)
	require.InDelta(t, want, got, 1e-4)
	require.InDelta(t, 0.3023, got, 1e-3)
}

// buildDiscreteChain builds the three-node discrete network A -> B,
// {A, B} -> C.
func buildDiscreteChain(t *testing.T) *network.Network {
	t.Helper()
	domain, err := node.NewDiscreteDomain(2)
	require.NoError(t, err)

	aCPT := discretePrior(t, []float64{0.6, 0.4})
	a, err := node.NewRoot("A", domain, nil, aCPT, nil)
	require.NoError(t, err)

	cptB, err := node.NewCPT([]int{2}, 2, []float64{0.7, 0.3, 0.2, 0.8})
	require.NoError(t, err)
	b, err := node.NewDiscreteChild("B", domain, []string{"A"}, []int{2}, cptB)
	require.NoError(t, err)

	cptC, err := node.NewCPT([]int{2, 2}, 2, []float64{0.9, 0.1, 0.5, 0.5, 0.3, 0.7, 0.1, 0.9})
	require.NoError(t, err)
	c, err := node.NewDiscreteChild("C", domain, []string{"A", "B"}, []int{2, 2}, cptC)
	require.NoError(t, err)

	net, err := network.New([]*node.Node{a, b, c})
	require.NoError(t, err)
	return net
}

func discretePrior(t *testing.T, probs []float64) node.MarginalDensity {
	t.Helper()
	return node.MarginalDensityFunc(func(x float64, theta paramset.Set) float64 {
		i := int(x)
		if i < 0 || i >= len(probs) {
			return 0
		}
		return probs[i]
	})
}

func TestInferDiscreteConditionalQueries(t *testing.T) {
	net := buildDiscreteChain(t)
	ve := New(net, 0, nil)

	// P(B=1 | A=0) = 0.3
	got, err := ve.Infer("B", DiscreteRange(1), map[string]float64{"A": 0}, paramset.Empty())
	require.NoError(t, err)
	require.InDelta(t, 0.3, got, 1e-6)

	// P(A=1 | B=0) = 0.16
	got, err = ve.Infer("A", DiscreteRange(1), map[string]float64{"B": 0}, paramset.Empty())
	require.NoError(t, err)
	require.InDelta(t, 0.16, got, 1e-6)

	// P(C=1 | A=0,B=1) = 0.5
	got, err = ve.Infer("C", DiscreteRange(1), map[string]float64{"A": 0, "B": 1}, paramset.Empty())
	require.NoError(t, err)
	require.InDelta(t, 0.5, got, 1e-6)
}

func TestQueryMatchesInferDistribution(t *testing.T) {
	net := buildDiscreteChain(t)
	ve := New(net, 0, nil)

	dist, err := ve.Query("B", map[string]int{"A": 0})
	require.NoError(t, err)
	require.Len(t, dist, 2)
	require.InDelta(t, 0.7, dist[0], 1e-6)
	require.InDelta(t, 0.3, dist[1], 1e-6)
}

func TestMAPRecoversMostProbableExplanation(t *testing.T) {
	net := buildDiscreteChain(t)
	ve := New(net, 0, nil)

	assignment, err := ve.MAP(map[string]int{"A": 0})
	require.NoError(t, err)
	require.Equal(t, 0, assignment["A"])
	require.Equal(t, 0, assignment["B"])
	require.Equal(t, 0, assignment["C"])
}

func TestMAPRejectsContinuousNetwork(t *testing.T) {
	net := buildUniformPassThrough(t)
	ve := New(net, 0, nil)

	_, err := ve.MAP(nil)
	require.Error(t, err)
	var target *UnsupportedMAPError
	require.ErrorAs(t, err, &target)
}

func TestInferUnknownVariable(t *testing.T) {
	net := buildDiscreteChain(t)
	ve := New(net, 0, nil)

	_, err := ve.Infer("Z", DiscreteRange(0), nil, paramset.Empty())
	require.Error(t, err)
}

func TestInferRangeMismatch(t *testing.T) {
	net := buildDiscreteChain(t)
	ve := New(net, 0, nil)

	_, err := ve.Infer("A", ContinuousRange(0, 1), nil, paramset.Empty())
	require.Error(t, err)
	var target *RangeMismatchError
	require.ErrorAs(t, err, &target)
}

func TestInferUnsupportedEvidenceZeroNormaliser(t *testing.T) {
	domain, err := node.NewDiscreteDomain(2)
	require.NoError(t, err)
	a, err := node.NewRoot("A", domain, nil, discretePrior(t, []float64{1, 0}), nil)
	require.NoError(t, err)
	cptB, err := node.NewCPT([]int{2}, 2, []float64{0.7, 0.3, 0.2, 0.8})
	require.NoError(t, err)
	b, err := node.NewDiscreteChild("B", domain, []string{"A"}, []int{2}, cptB)
	require.NoError(t, err)
	net, err := network.New([]*node.Node{a, b})
	require.NoError(t, err)

	ve := New(net, 0, nil)
	_, err = ve.Infer("B", DiscreteRange(0, 1), map[string]float64{"A": 1}, paramset.Empty())
	require.Error(t, err)
	var target *UnsupportedEvidenceError
	require.ErrorAs(t, err, &target)
}

func TestMinFillOrderAgreesWithInsertionOrder(t *testing.T) {
	net := buildDiscreteChain(t)
	insertion := New(net, 0, InsertionOrder)
	minFill := New(net, 0, MinFillOrder)

	gotInsertion, err := insertion.Infer("C", DiscreteRange(1), map[string]float64{"A": 0, "B": 1}, paramset.Empty())
	require.NoError(t, err)
	gotMinFill, err := minFill.Infer("C", DiscreteRange(1), map[string]float64{"A": 0, "B": 1}, paramset.Empty())
	require.NoError(t, err)
	require.InDelta(t, gotInsertion, gotMinFill, 1e-9)
}
