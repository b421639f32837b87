package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// LogisticRegression is an L2-regularized binary logistic regression fitted
// with L-BFGS. The intercept is not penalized.
type LogisticRegression struct {
	BaseModel
	C           float64
	MaxIter     int
	Weights     []float64
	Intercept   float64
	Iterations  int
	Status      optimize.Status
	NumFeatures int
}

func NewLogisticRegression(c float64, maxIter int) *LogisticRegression {
	if c <= 0 {
		c = 1.0
	}
	if maxIter <= 0 {
		maxIter = 100
	}
	return &LogisticRegression{
		C:       c,
		MaxIter: maxIter,
		BaseModel: BaseModel{
			Name: "LogisticRegression",
			Params: map[string]any{
				"c":        c,
				"max_iter": maxIter,
			},
		},
	}
}

func (lr *LogisticRegression) Fit(X mat.Matrix, y []int) error {
	n, d, err := checkLengths(X, y)
	if err != nil {
		return err
	}

	targets := make([]float64, n)
	for i, label := range y {
		switch label {
		case 0, 1:
			targets[i] = float64(label)
		default:
			return fmt.Errorf("logistic regression expects labels 0/1, got %d at row %d", label, i)
		}
	}

	dense := mat.DenseCopyOf(X)
	nf := float64(n)
	penalty := 1 / (lr.C * nf)

	z := mat.NewVecDense(n, nil)
	residual := make([]float64, n)

	// forward computes the margins for params = [w..., b].
	forward := func(params []float64) {
		z.MulVec(dense, mat.NewVecDense(d, params[:d]))
		for i := 0; i < n; i++ {
			z.SetVec(i, z.AtVec(i)+params[d])
		}
	}

	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			forward(params)
			loss := 0.0
			for i := 0; i < n; i++ {
				loss += logLoss(z.AtVec(i), targets[i])
			}
			w := params[:d]
			return loss/nf + 0.5*penalty*floats.Dot(w, w)
		},
		Grad: func(grad, params []float64) {
			forward(params)
			for i := 0; i < n; i++ {
				residual[i] = (sigmoid(z.AtVec(i)) - targets[i]) / nf
			}
			gw := mat.NewVecDense(d, grad[:d])
			gw.MulVec(dense.T(), mat.NewVecDense(n, residual))
			floats.AddScaled(grad[:d], penalty, params[:d])
			grad[d] = floats.Sum(residual)
		},
	}

	settings := &optimize.Settings{
		MajorIterations:   lr.MaxIter,
		GradientThreshold: 1e-6,
	}

	result, err := optimize.Minimize(problem, make([]float64, d+1), settings, &optimize.LBFGS{})
	// line search stalls close to the optimum are reported as errors but
	// still carry a usable location
	if result == nil {
		return fmt.Errorf("logistic regression: %w", err)
	}
	for _, v := range result.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("logistic regression diverged: %v", err)
		}
	}

	lr.Weights = append([]float64(nil), result.X[:d]...)
	lr.Intercept = result.X[d]
	lr.Iterations = result.Stats.MajorIterations
	lr.Status = result.Status
	lr.NumFeatures = d

	return nil
}

func (lr *LogisticRegression) Predict(X mat.Matrix) ([]int, error) {
	if lr.Weights == nil {
		return nil, ErrNotFitted
	}
	n, d := X.Dims()
	if d != lr.NumFeatures {
		return nil, fmt.Errorf("logistic regression fitted on %d features, got %d", lr.NumFeatures, d)
	}

	scores := mat.NewVecDense(n, nil)
	scores.MulVec(X, mat.NewVecDense(d, lr.Weights))

	predictions := make([]int, n)
	for i := 0; i < n; i++ {
		if scores.AtVec(i)+lr.Intercept > 0 {
			predictions[i] = 1
		}
	}
	return predictions, nil
}

func (lr *LogisticRegression) Reset() {
	lr.Weights = nil
	lr.Intercept = 0
	lr.Iterations = 0
	lr.NumFeatures = 0
}

// logLoss is -[t*log(s(z)) + (1-t)*log(1-s(z))] written to avoid overflow.
func logLoss(z, t float64) float64 {
	// log(1 + exp(z)) - t*z
	var softplus float64
	if z > 0 {
		softplus = z + math.Log1p(math.Exp(-z))
	} else {
		softplus = math.Log1p(math.Exp(z))
	}
	return softplus - t*z
}
